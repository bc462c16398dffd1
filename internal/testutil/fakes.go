package testutil

import (
	"context"
	"sync"

	"github.com/JDamianDelgado/ValleDePaz/internal/media"
)

// UploadCall records one call to FakeUploader.Upload
type UploadCall struct {
	Folder string
	File   media.File
}

// FakeUploader records uploads and returns a predictable URL
type FakeUploader struct {
	mu    sync.Mutex
	Calls []UploadCall
	Err   error
}

func (f *FakeUploader) Upload(ctx context.Context, folder string, file media.File) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.Calls = append(f.Calls, UploadCall{Folder: folder, File: file})
	if f.Err != nil {
		return "", f.Err
	}
	return "https://media.test/" + folder + "/" + file.Name, nil
}

func (f *FakeUploader) CallCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.Calls)
}

// SentEmail records one notice handed to FakeNotifier
type SentEmail struct {
	Kind string
	To   string
	Name string
}

// FakeNotifier records approval and rejection notices
type FakeNotifier struct {
	mu   sync.Mutex
	Sent []SentEmail
	Err  error
}

func (f *FakeNotifier) SendApproval(ctx context.Context, to, name string) error {
	return f.record("approval", to, name)
}

func (f *FakeNotifier) SendRejection(ctx context.Context, to, name string) error {
	return f.record("rejection", to, name)
}

func (f *FakeNotifier) record(kind, to, name string) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.Err != nil {
		return f.Err
	}
	f.Sent = append(f.Sent, SentEmail{Kind: kind, To: to, Name: name})
	return nil
}

// Count returns how many notices of kind were sent
func (f *FakeNotifier) Count(kind string) int {
	f.mu.Lock()
	defer f.mu.Unlock()

	n := 0
	for _, s := range f.Sent {
		if s.Kind == kind {
			n++
		}
	}
	return n
}
