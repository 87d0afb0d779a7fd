// Package files locates input workbooks on disk.
//
// Discovery searches an ordered list of directories for a glob pattern and
// picks the newest match from the first directory that has one:
//
//	d := files.NewDiscovery(paths.ExecutableDir, logger)
//	input, err := d.FindLatestInput(paths.SearchDirs, config.InputFilePattern)
package files
