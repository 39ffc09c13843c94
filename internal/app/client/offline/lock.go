// internal/app/client/offline/lock.go
package offline

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/gofrs/flock"
)

// CycleLock блокировка цикла синхронизации между процессами,
// работающими с одним хранилищем
type CycleLock interface {
	TryLock() (bool, error)
	Unlock() error
}

// FileLock advisory-блокировка на файле рядом с базой.
// Снимается ОС при завершении процесса, в том числе аварийном.
type FileLock struct {
	path string
	fl   *flock.Flock
}

func NewFileLock(path string) *FileLock {
	return &FileLock{
		path: path,
		fl:   flock.New(path),
	}
}

// TryLock не блокируется: false означает, что цикл идет в другом процессе
func (l *FileLock) TryLock() (bool, error) {
	if err := os.MkdirAll(filepath.Dir(l.path), 0700); err != nil {
		return false, fmt.Errorf("ошибка создания директории блокировки: %w", err)
	}
	return l.fl.TryLock()
}

func (l *FileLock) Unlock() error {
	return l.fl.Unlock()
}

// LockPath путь файла блокировки для базы dataPath
func LockPath(dataPath string) string {
	return dataPath + ".lock"
}
