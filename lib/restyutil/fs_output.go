package restyutil

import (
	"log/slog"
	"os"
	"path/filepath"
	"sync"

	devenv "inmatesearch-backend/dev/env"
)

type FilesystemOutput struct {
	directory string
}

// NewFilesystemOutput clears dir and returns an output writing one file per
// exchange into it. dir may start with <dev_state>.
func NewFilesystemOutput(dir string) (FilesystemOutput, error) {
	dir, err := devenv.ResolvePath(dir)
	if err != nil {
		return FilesystemOutput{}, err
	}
	err = os.RemoveAll(dir)
	if err != nil {
		return FilesystemOutput{}, err
	}
	err = os.MkdirAll(dir, 0777)
	if err != nil {
		return FilesystemOutput{}, err
	}
	return FilesystemOutput{directory: dir}, nil
}

func (o FilesystemOutput) Write(id string, contents string) {
	err := os.WriteFile(filepath.Join(o.directory, id+".txt"), []byte(contents), 0600)
	if err != nil {
		slog.Warn("failed to write message info file", "id", id, "err", err)
	}
}

// MemoryOutput keeps exchanges in memory, used by tests.
type MemoryOutput struct {
	mutex    sync.Mutex
	Messages map[string]string
}

func (o *MemoryOutput) Write(id string, contents string) {
	o.mutex.Lock()
	defer o.mutex.Unlock()
	if o.Messages == nil {
		o.Messages = map[string]string{}
	}
	o.Messages[id] = contents
}
