package rules

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"repositum/internal/domain"
	"repositum/internal/models"
	"repositum/internal/repository"
)

func optMap(options map[string]any, key string) (map[string]any, bool) {
	v, ok := options[key]
	if !ok {
		return nil, false
	}
	m, ok := v.(map[string]any)
	return m, ok
}

func optString(options map[string]any, key string) (string, bool) {
	v, ok := options[key]
	if !ok {
		return "", false
	}
	switch s := v.(type) {
	case string:
		return s, true
	case int:
		return strconv.Itoa(s), true
	default:
		return fmt.Sprintf("%v", v), true
	}
}

func optBool(options map[string]any, key string) bool {
	v, ok := options[key]
	if !ok {
		return false
	}
	switch b := v.(type) {
	case bool:
		return b
	case string:
		parsed, err := strconv.ParseBool(b)
		return err == nil && parsed
	default:
		return false
	}
}

// CollectionOption resolves a collection addressed in one of three ways:
//
//   - `id` of the collection
//   - `roleName` and `number` of the collection
//   - `roleOaiName` and `number` or `name` of the collection
//
// The first matching collection wins.
type CollectionOption struct {
	options map[string]any
}

// NewCollectionOption wraps raw collection addressing options.
func NewCollectionOption(options map[string]any) *CollectionOption {
	return &CollectionOption{options: options}
}

// Resolve loads the addressed collection from the store.
func (o *CollectionOption) Resolve(ctx context.Context, store *repository.Store) (*models.Collection, error) {
	if o == nil || len(o.options) == 0 {
		return nil, errors.New("no collection options configured")
	}

	if id, ok := optString(o.options, "id"); ok {
		return store.Collections.Get(ctx, id)
	}

	var (
		role *models.CollectionRole
		err  error
	)
	if roleName, ok := optString(o.options, "roleName"); ok {
		role, err = store.CollectionRoles.FindByName(ctx, roleName)
	} else if oaiName, ok := optString(o.options, "roleOaiName"); ok {
		role, err = store.CollectionRoles.FindByOAIName(ctx, oaiName)
	} else {
		return nil, errors.New("collection options must set id, roleName or roleOaiName")
	}
	if err != nil {
		return nil, err
	}

	var collections []*models.Collection
	if number, ok := optString(o.options, "number"); ok {
		collections, err = store.Collections.FindByRoleNumber(ctx, role.ID, number)
	} else if name, ok := optString(o.options, "name"); ok {
		collections, err = store.Collections.FindByRoleName(ctx, role.ID, name)
	} else {
		return nil, errors.New("collection options must set number or name")
	}
	if err != nil {
		return nil, err
	}

	if len(collections) == 0 {
		return nil, fmt.Errorf("no collection matches options: %w", domain.ErrNotFound)
	}
	return collections[0], nil
}
