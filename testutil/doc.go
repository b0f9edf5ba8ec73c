// Package testutil provides log fixtures for sawmill tests.
//
// Files are created under directories from t.TempDir, so they are removed
// automatically when the test ends. Any failure aborts the test.
//
//	func TestGzipLogs(t *testing.T) {
//	    dir := t.TempDir()
//	    testutil.WriteFile(t, dir, "access.log", "GET /\n")
//	    testutil.WriteGzip(t, dir, "access.log.1.gz", "POST /\n")
//	}
package testutil
