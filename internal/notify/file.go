package notify

import (
	"encoding/json"
	"os"
	"sync"

	"go.uber.org/zap"
)

// FileObserver пишет события в файл по одному JSON на строку
type FileObserver struct {
	file *os.File
	log  *zap.Logger
	mu   sync.Mutex
}

// NewFileObserver открывает файл на дозапись
func NewFileObserver(path string, log *zap.Logger) (*FileObserver, error) {
	file, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return nil, err
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &FileObserver{file: file, log: log}, nil
}

func (f *FileObserver) Notify(event Event) {
	f.mu.Lock()
	defer f.mu.Unlock()

	data, err := json.Marshal(event)
	if err != nil {
		f.log.Error("state log: ошибка сериализации", zap.Error(err))
		return
	}

	data = append(data, '\n')
	if _, err := f.file.Write(data); err != nil {
		f.log.Error("state log: ошибка записи", zap.Error(err))
	}
}

func (f *FileObserver) Close() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.file.Close()
}
