package services

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/slack-go/slack"

	"github.com/photomap/backend/internal/logging"
	"github.com/photomap/backend/internal/models"
)

const testToken = "verification-secret"

type postedMessage struct {
	Channel    string
	Text       string
	Attachment slack.Attachment
}

type privateMessage struct {
	Channel string
	UserID  string
	Text    string
}

// fakePlatform records every outbound call made through a session.
type fakePlatform struct {
	mu sync.Mutex

	profiles    map[string]*models.SlackProfile
	userInfoErr error
	file        *models.SlackFile
	fileInfoErr error
	content     []byte
	downloadErr error
	postErr     error
	privateErr  error

	userInfoCalls int
	fileInfoCalls int
	downloads     []string
	posts         []postedMessage
	privates      []privateMessage
}

func newFakePlatform() *fakePlatform {
	return &fakePlatform{
		profiles: map[string]*models.SlackProfile{
			"U1": {ID: "U1", Name: "ada", RealName: "Ada Lovelace"},
		},
		file: &models.SlackFile{
			ID:         "F1",
			URLPrivate: "https://files.example.test/F1/photo.jpg",
			Thumb80:    "https://files.example.test/F1/thumb_80.jpg",
			Mimetype:   "image/jpeg",
			Channels:   []string{"C1"},
		},
		content: []byte("jpeg bytes"),
	}
}

func (f *fakePlatform) UserInfo(_ context.Context, userID string) (*models.SlackProfile, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.userInfoCalls++
	if f.userInfoErr != nil {
		return nil, f.userInfoErr
	}
	p, ok := f.profiles[userID]
	if !ok {
		return nil, errors.New("user_not_found")
	}
	cp := *p
	return &cp, nil
}

func (f *fakePlatform) FileInfo(_ context.Context, fileID string) (*models.SlackFile, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.fileInfoCalls++
	if f.fileInfoErr != nil {
		return nil, f.fileInfoErr
	}
	cp := *f.file
	return &cp, nil
}

func (f *fakePlatform) Download(_ context.Context, url string) ([]byte, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.downloads = append(f.downloads, url)
	if f.downloadErr != nil {
		return nil, f.downloadErr
	}
	return f.content, nil
}

func (f *fakePlatform) PostMessage(_ context.Context, channel string, text string, attachment slack.Attachment) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.postErr != nil {
		return f.postErr
	}
	f.posts = append(f.posts, postedMessage{Channel: channel, Text: text, Attachment: attachment})
	return nil
}

func (f *fakePlatform) PostPrivate(_ context.Context, channel string, userID string, text string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.privateErr != nil {
		return f.privateErr
	}
	f.privates = append(f.privates, privateMessage{Channel: channel, UserID: userID, Text: text})
	return nil
}

// sessions returns a factory handing out the same fake and counting opens.
func (f *fakePlatform) sessions(opened *int) SessionFactory {
	return func() Platform {
		if opened != nil {
			*opened++
		}
		return f
	}
}

// countingUserStore counts writes on top of the in-memory store.
type countingUserStore struct {
	*MemoryUserStore
	mu      sync.Mutex
	puts    int
	flagErr error
}

func newCountingUserStore() *countingUserStore {
	return &countingUserStore{MemoryUserStore: NewMemoryUserStore()}
}

func (s *countingUserStore) PutUser(ctx context.Context, u *models.User) error {
	s.mu.Lock()
	s.puts++
	s.mu.Unlock()
	return s.MemoryUserStore.PutUser(ctx, u)
}

func (s *countingUserStore) SetIgnoreFilesShared(ctx context.Context, id string) error {
	if s.flagErr != nil {
		return s.flagErr
	}
	return s.MemoryUserStore.SetIgnoreFilesShared(ctx, id)
}

func (s *countingUserStore) putCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.puts
}

// countingFileStore counts mutations on top of the in-memory store.
type countingFileStore struct {
	*MemoryFileStore
	mu        sync.Mutex
	mutations int
	putErr    error
	deleteErr error
}

func newCountingFileStore() *countingFileStore {
	return &countingFileStore{MemoryFileStore: NewMemoryFileStore()}
}

func (s *countingFileStore) count() {
	s.mu.Lock()
	s.mutations++
	s.mu.Unlock()
}

func (s *countingFileStore) PutFile(ctx context.Context, f *models.File) error {
	s.count()
	if s.putErr != nil {
		return s.putErr
	}
	return s.MemoryFileStore.PutFile(ctx, f)
}

func (s *countingFileStore) SetAllowed(ctx context.Context, id string) error {
	s.count()
	return s.MemoryFileStore.SetAllowed(ctx, id)
}

func (s *countingFileStore) DeleteFile(ctx context.Context, id string) error {
	s.count()
	if s.deleteErr != nil {
		return s.deleteErr
	}
	return s.MemoryFileStore.DeleteFile(ctx, id)
}

func (s *countingFileStore) mutationCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.mutations
}

type fakeArchive struct {
	mu      sync.Mutex
	stored  map[string][]byte
	removed []string
	err     error
}

func (a *fakeArchive) Store(_ context.Context, fileID string, image []byte) (string, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.err != nil {
		return "", a.err
	}
	if a.stored == nil {
		a.stored = make(map[string][]byte)
	}
	a.stored[fileID] = image
	return "https://archive.example.test/" + fileID + ".jpg", nil
}

func (a *fakeArchive) Remove(_ context.Context, fileID string) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.removed = append(a.removed, fileID)
	return nil
}

type fakeScreener struct {
	unsafe bool
	err    error
}

func (s fakeScreener) IsUnsafe(context.Context, []byte) (bool, error) {
	return s.unsafe, s.err
}

func geotaggedMetadata() *models.ImageMetadata {
	return &models.ImageMetadata{
		CreatedAt:    "2017:06:01 10:11:12",
		LatitudeRef:  "N",
		Latitude:     [3]float64{40, 26, 46},
		LongitudeRef: "W",
		Longitude:    [3]float64{79, 58, 56},
	}
}

func staticExtractor(meta *models.ImageMetadata, err error) MetadataExtractor {
	return func([]byte) (*models.ImageMetadata, error) {
		return meta, err
	}
}

func newTestResolver(store UserStore) *UserResolver {
	return NewUserResolver(store, 16, time.Minute)
}

var testLogger = logging.Discard()
