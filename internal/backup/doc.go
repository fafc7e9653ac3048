// Package backup keeps snapshots of generated platform files so a save can
// be undone.
//
// Before a platform file is overwritten, the platform manager hands its
// current contents to [Manager.Backup]. Each snapshot lives in its own
// timestamped directory:
//
//	<DataHome>/mcpsel/backups/
//	└── {platform}/
//	    └── {timestamp}/
//	        ├── manifest.json
//	        └── {file name}
//
// The manifest records the original path, permissions and a SHA256 hash
// of the copy. [Manager.Restore] refuses to write back a copy whose hash no
// longer matches.
//
// Only the most recent snapshots are retained; see [WithRetention].
package backup
