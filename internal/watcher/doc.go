// Package watcher keeps a test record in step with its folder on disk.
//
// Screenshots are ordinary files, so a tester can delete or rename one in a
// file manager while the record still lists it. The Watcher subscribes to
// the folder with fsnotify and drops the entry as soon as its file is gone;
// Reconcile does the same check once, for callers that are not running a
// watcher.
//
// Example usage:
//
//	w, err := watcher.New(recs, testID, logger)
//	if err != nil {
//		log.Fatal(err)
//	}
//	if err := w.Start(); err != nil {
//		log.Fatal(err)
//	}
//	defer w.Stop()
package watcher
