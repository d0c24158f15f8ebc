package config

const (
	// MaxPackageBytes is the maximum size of an uploaded import package.
	// Large enough for bulk deposits with fulltext PDFs, small enough to
	// keep a single request from exhausting the temp volume.
	MaxPackageBytes = 256 << 20

	// MaxImportLogFiles is the number of timestamped import and reject log
	// files kept before the oldest are removed.
	MaxImportLogFiles = 20
)
