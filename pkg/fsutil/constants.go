package fsutil

// File and directory permission constants.
// These follow standard Unix permission conventions and are used consistently
// for every file corsget writes.
const (
	FileModeDefault = 0o644 // -rw-r--r--: downloaded and converted observation files
	DirModeDefault  = 0o755 // drwxr-xr-x: daily/{year}/{doy} tree
)
