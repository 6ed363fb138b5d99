package storage

import (
	"errors"
	"io/fs"
	"os"
)

// sqliteSidecars are the files SQLite keeps next to the database in WAL mode.
var sqliteSidecars = []string{"", "-wal", "-shm"}

// DatabaseSize returns the bytes used by the SQLite database at dbPath including its WAL
// and shared-memory files. Missing files count as zero.
func DatabaseSize(dbPath string) (int64, error) {
	if dbPath == "" {
		return 0, nil
	}
	var total int64
	for _, suffix := range sqliteSidecars {
		info, err := os.Stat(dbPath + suffix)
		if errors.Is(err, fs.ErrNotExist) {
			continue
		}
		if err != nil {
			return 0, err
		}
		total += info.Size()
	}
	return total, nil
}

// DiskUsage reports the on-disk size of the store's database.
func (s *SQLiteStore) DiskUsage() (int64, error) {
	return DatabaseSize(s.path)
}
