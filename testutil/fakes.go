package testutil

import (
	"context"
	"io"
	"strings"
	"sync"
)

// Images records uploads and deletions instead of talking to Cloudinary.
type Images struct {
	mu       sync.Mutex
	Uploaded []string
	Deleted  []string
	Err      error
}

func (f *Images) Upload(_ context.Context, file io.Reader, filename string) (string, error) {
	if f.Err != nil {
		return "", f.Err
	}
	if _, err := io.Copy(io.Discard, file); err != nil {
		return "", err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.Uploaded = append(f.Uploaded, filename)
	return "https://res.cloudinary.com/demo/image/upload/v1/foodshare/" + filename, nil
}

func (f *Images) Delete(_ context.Context, imageURL string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.Deleted = append(f.Deleted, imageURL)
	return f.Err
}

func (f *Images) Owns(imageURL string) bool {
	return strings.HasPrefix(imageURL, "https://res.cloudinary.com/")
}

type Notification struct {
	DonorEmail string
	FoodName   string
	Requester  string
}

// Notifier records claim notifications.
type Notifier struct {
	mu   sync.Mutex
	Sent []Notification
	Err  error
}

func (f *Notifier) NotifyRequested(_ context.Context, donorEmail, foodName, requester string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.Sent = append(f.Sent, Notification{DonorEmail: donorEmail, FoodName: foodName, Requester: requester})
	return f.Err
}
