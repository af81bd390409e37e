package usecase

import (
	"context"
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/stretchr/testify/mock"

	"ecotrack/internal/domain/entity"
	"ecotrack/internal/domain/service"
)

// fakeFiles records uploads and deletions in memory.
type fakeFiles struct {
	mu       sync.Mutex
	uploads  []string
	deleted  []string
	failNext bool
}

func (f *fakeFiles) UploadImage(ctx context.Context, file service.FileUpload, folder string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failNext {
		f.failNext = false
		return "", fmt.Errorf("bucket unavailable")
	}
	if file.Content != nil {
		_, _ = io.Copy(io.Discard, file.Content)
	}
	url := fmt.Sprintf("https://storage.test/%s/%d-%s", folder, len(f.uploads), file.Filename)
	f.uploads = append(f.uploads, url)
	return url, nil
}

func (f *fakeFiles) DeleteFile(ctx context.Context, fileURL string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.deleted = append(f.deleted, fileURL)
	return nil
}

func (f *fakeFiles) Close() error { return nil }

// recordingPublisher captures events synchronously.
type recordingPublisher struct {
	mu     sync.Mutex
	events []entity.DomainEvent
}

func (p *recordingPublisher) Publish(ctx context.Context, event entity.DomainEvent) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, event)
}

func (p *recordingPublisher) ofType(t entity.EventType) []entity.DomainEvent {
	p.mu.Lock()
	defer p.mu.Unlock()
	var out []entity.DomainEvent
	for _, e := range p.events {
		if e.Type == t {
			out = append(out, e)
		}
	}
	return out
}

type mockMailer struct {
	mock.Mock
}

func (m *mockMailer) Send(ctx context.Context, mail service.Mail) error {
	args := m.Called(ctx, mail)
	return args.Error(0)
}

type recordingBroadcaster struct {
	mu       sync.Mutex
	messages []string
}

func (b *recordingBroadcaster) Broadcast(messageType string, payload interface{}) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.messages = append(b.messages, messageType)
}

// plainHasher keeps tests fast; production uses bcrypt.
type plainHasher struct{}

func (plainHasher) Hash(password string) (string, error) { return "hashed:" + password, nil }
func (plainHasher) Compare(hash, password string) bool   { return hash == "hashed:"+password }

type staticTokens struct{}

func (staticTokens) Issue(userID string, role entity.Role, ttl time.Duration) (string, error) {
	return fmt.Sprintf("token-%s-%s-%s", userID, role, ttl), nil
}

type stubVerifier struct {
	identity *FederatedIdentity
	err      error
}

func (s stubVerifier) VerifyIDToken(ctx context.Context, idToken string) (*FederatedIdentity, error) {
	return s.identity, s.err
}

func jpeg(name string) service.FileUpload {
	return service.FileUpload{Filename: name, ContentType: "image/jpeg", Size: 1024}
}

// fixedClock returns a settable clock for use case now fields.
type fixedClock struct {
	mu sync.Mutex
	t  time.Time
}

func (c *fixedClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.t
}

func (c *fixedClock) Set(t time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.t = t
}
