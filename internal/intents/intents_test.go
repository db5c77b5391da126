package intents

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"

	"bunbot/internal/acapela"
	"bunbot/internal/chatstore"
	"bunbot/internal/dispatch"
	"bunbot/internal/templates"
)

// fakeBot records outgoing transport calls for assertions.
type fakeBot struct {
	messages  []*bot.SendMessageParams
	photos    []*bot.SendPhotoParams
	videos    []*bot.SendVideoParams
	documents []*bot.SendDocumentParams
	voices    []*bot.SendVoiceParams
	actions   []models.ChatAction
}

func (f *fakeBot) SendMessage(ctx context.Context, params *bot.SendMessageParams) (*models.Message, error) {
	f.messages = append(f.messages, params)
	return &models.Message{}, nil
}

func (f *fakeBot) SendPhoto(ctx context.Context, params *bot.SendPhotoParams) (*models.Message, error) {
	f.photos = append(f.photos, params)
	return &models.Message{}, nil
}

func (f *fakeBot) SendVideo(ctx context.Context, params *bot.SendVideoParams) (*models.Message, error) {
	f.videos = append(f.videos, params)
	return &models.Message{}, nil
}

func (f *fakeBot) SendDocument(ctx context.Context, params *bot.SendDocumentParams) (*models.Message, error) {
	f.documents = append(f.documents, params)
	return &models.Message{}, nil
}

func (f *fakeBot) SendVoice(ctx context.Context, params *bot.SendVoiceParams) (*models.Message, error) {
	f.voices = append(f.voices, params)
	return &models.Message{}, nil
}

func (f *fakeBot) SendChatAction(ctx context.Context, params *bot.SendChatActionParams) (bool, error) {
	f.actions = append(f.actions, params.Action)
	return true, nil
}

func (f *fakeBot) GetFile(ctx context.Context, params *bot.GetFileParams) (*models.File, error) {
	return &models.File{FileID: params.FileID, FilePath: "files/" + params.FileID}, nil
}

// stubRand returns scripted draws so handler outcomes are exact.
type stubRand struct {
	floats []float64
	ints   []int
}

func (s *stubRand) Float64() float64 {
	v := s.floats[0]
	s.floats = s.floats[1:]
	return v
}

func (s *stubRand) IntN(n int) int {
	v := s.ints[0]
	s.ints = s.ints[1:]
	if v >= n {
		v = n - 1
	}
	return v
}

func testDeps(t *testing.T, tb *fakeBot, rnd Rand) Deps {
	t.Helper()

	dir := t.TempDir()
	bundle := `
greeting: "hi {name}"
roll_die: "d{die}: {result}"
roll_dice: "{amt}d{die} {all} = {sum}"
roll_dice_fail: "can't roll that"
error: "oops"
caption: "a picture"
`
	if err := os.WriteFile(filepath.Join(dir, "en.yml"), []byte(bundle), 0o644); err != nil {
		t.Fatal(err)
	}
	resolver, err := templates.Load(dir, "en", nil)
	if err != nil {
		t.Fatal(err)
	}

	return Deps{
		Bot:      tb,
		Resolver: resolver,
		Rand:     rnd,
	}
}

func groupContext(data map[string]string) *dispatch.Context {
	return &dispatch.Context{
		Chat:     chatstore.Chat{ID: 100, Kind: chatstore.KindGroup},
		Locale:   "en",
		Captures: data,
		Msg:      &models.Message{ID: 55},
	}
}

func TestRespondChanceDraw(t *testing.T) {
	t.Parallel()

	chance := 0.25
	tb := &fakeBot{}
	deps := testDeps(t, tb, &stubRand{floats: []float64{0.9, 0.1}})
	handlers := Register(deps)

	dc := groupContext(nil)
	dc.Data.Text = "greeting"
	dc.Data.Chance = &chance

	// First draw (0.9) exceeds the chance: decline, no message.
	handled, err := handlers["respond"](context.Background(), dc)
	if err != nil {
		t.Fatal(err)
	}
	if handled {
		t.Error("failed chance draw should decline")
	}
	if len(tb.messages) != 0 {
		t.Error("declined respond must not send anything")
	}

	// Second draw (0.1) passes.
	handled, err = handlers["respond"](context.Background(), dc)
	if err != nil {
		t.Fatal(err)
	}
	if !handled {
		t.Error("passing chance draw should handle")
	}
	if len(tb.messages) != 1 {
		t.Fatalf("expected one message, got %d", len(tb.messages))
	}
}

func TestRespondTextReplyThreading(t *testing.T) {
	t.Parallel()

	tb := &fakeBot{}
	handlers := Register(testDeps(t, tb, &stubRand{}))

	dc := groupContext(map[string]string{"name": "Sam"})
	dc.Data.Text = "greeting"

	if _, err := handlers["respond"](context.Background(), dc); err != nil {
		t.Fatal(err)
	}
	if got := tb.messages[0].Text; got != "hi Sam" {
		t.Errorf("expected interpolated captures, got %q", got)
	}
	if tb.messages[0].ReplyParameters == nil || tb.messages[0].ReplyParameters.MessageID != 55 {
		t.Error("group replies must thread onto the triggering message")
	}

	// Private chats get a bare message.
	dc = groupContext(map[string]string{"name": "Sam"})
	dc.Chat.Kind = chatstore.KindPrivate
	dc.Data.Text = "greeting"

	if _, err := handlers["respond"](context.Background(), dc); err != nil {
		t.Fatal(err)
	}
	if tb.messages[1].ReplyParameters != nil {
		t.Error("private replies must not thread")
	}
}

func TestRespondMediaByExtension(t *testing.T) {
	t.Parallel()

	assets := t.TempDir()
	for _, name := range []string{"pic.png", "clip.mp4", "blob.bin"} {
		if err := os.WriteFile(filepath.Join(assets, name), []byte("data"), 0o644); err != nil {
			t.Fatal(err)
		}
	}

	tb := &fakeBot{}
	deps := testDeps(t, tb, &stubRand{})
	deps.AssetsDir = assets
	handlers := Register(deps)

	send := func(file, text string) {
		t.Helper()
		dc := groupContext(nil)
		dc.Data.File = file
		dc.Data.Text = text
		handled, err := handlers["respond"](context.Background(), dc)
		if err != nil {
			t.Fatal(err)
		}
		if !handled {
			t.Fatalf("media respond for %q should handle", file)
		}
	}

	send("pic.png", "caption")
	send("clip.mp4", "")
	send("blob.bin", "")

	if len(tb.photos) != 1 || len(tb.videos) != 1 || len(tb.documents) != 1 {
		t.Fatalf("expected one send per media class, got %d/%d/%d",
			len(tb.photos), len(tb.videos), len(tb.documents))
	}
	if tb.photos[0].Caption != "a picture" {
		t.Errorf("expected resolved caption, got %q", tb.photos[0].Caption)
	}
	if tb.videos[0].Caption != "" {
		t.Errorf("captionless payload should send no caption, got %q", tb.videos[0].Caption)
	}
}

func TestRespondMediaDirectoryPick(t *testing.T) {
	t.Parallel()

	assets := t.TempDir()
	sub := filepath.Join(assets, "buns")
	if err := os.MkdirAll(sub, 0o755); err != nil {
		t.Fatal(err)
	}
	for _, name := range []string{"a.png", "b.png"} {
		if err := os.WriteFile(filepath.Join(sub, name), []byte("data"), 0o644); err != nil {
			t.Fatal(err)
		}
	}

	tb := &fakeBot{}
	deps := testDeps(t, tb, &stubRand{ints: []int{1}})
	deps.AssetsDir = assets
	handlers := Register(deps)

	dc := groupContext(nil)
	dc.Data.File = "buns"

	if _, err := handlers["respond"](context.Background(), dc); err != nil {
		t.Fatal(err)
	}
	if len(tb.photos) != 1 {
		t.Fatalf("expected one photo, got %d", len(tb.photos))
	}
	upload, ok := tb.photos[0].Photo.(*models.InputFileUpload)
	if !ok {
		t.Fatalf("expected a file upload, got %T", tb.photos[0].Photo)
	}
	if upload.Filename != "b.png" {
		t.Errorf("expected the indexed directory entry, got %q", upload.Filename)
	}
}

func TestRollOutcomes(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		name     string
		captures map[string]string
		ints     []int
		expected string
	}{
		{
			name:     "single die",
			captures: map[string]string{"amt": "1", "die": "20"},
			ints:     []int{14},
			expected: "d20: 15",
		},
		{
			name:     "multiple dice sum",
			captures: map[string]string{"amt": "3", "die": "6"},
			ints:     []int{0, 2, 5},
			expected: "3d6 [1, 3, 6] = 10",
		},
		{
			name:     "zero amount",
			captures: map[string]string{"amt": "0", "die": "6"},
			expected: "can't roll that",
		},
		{
			name:     "zero sided die",
			captures: map[string]string{"amt": "2", "die": "0"},
			expected: "can't roll that",
		},
		{
			name:     "unparseable capture",
			captures: map[string]string{"amt": "x", "die": "6"},
			expected: "can't roll that",
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			tb := &fakeBot{}
			handlers := Register(testDeps(t, tb, &stubRand{ints: tc.ints}))

			handled, err := handlers["roll"](context.Background(), groupContext(tc.captures))
			if err != nil {
				t.Fatal(err)
			}
			if !handled {
				t.Fatal("roll always handles its match")
			}
			if got := tb.messages[0].Text; got != tc.expected {
				t.Errorf("reply = %q, want %q", got, tc.expected)
			}
		})
	}
}

func TestMoshIgnoresNonMediaReplies(t *testing.T) {
	t.Parallel()

	tb := &fakeBot{}
	handlers := Register(testDeps(t, tb, &stubRand{}))

	// Not a reply at all.
	dc := groupContext(nil)
	handled, err := handlers["mosh"](context.Background(), dc)
	if err != nil || !handled {
		t.Fatalf("bare mosh should be a silent no-op, got handled=%v err=%v", handled, err)
	}

	// A reply without corruptible media.
	dc = groupContext(nil)
	dc.Msg.ReplyToMessage = &models.Message{Text: "just words"}
	handled, err = handlers["mosh"](context.Background(), dc)
	if err != nil || !handled {
		t.Fatalf("textual reply target should be a silent no-op, got handled=%v err=%v", handled, err)
	}

	if len(tb.messages)+len(tb.photos)+len(tb.videos) != 0 {
		t.Error("no-op mosh must not send anything")
	}
}

func TestMoshTargetSelection(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		name     string
		msg      *models.Message
		wantID   string
		wantKind mediaKind
		wantOK   bool
	}{
		{
			name:     "video",
			msg:      &models.Message{Video: &models.Video{FileID: "v1"}},
			wantID:   "v1",
			wantKind: kindVideo,
			wantOK:   true,
		},
		{
			name:     "mp4 document",
			msg:      &models.Message{Document: &models.Document{FileID: "d1", MimeType: "video/mp4"}},
			wantID:   "d1",
			wantKind: kindVideo,
			wantOK:   true,
		},
		{
			name:   "non video document",
			msg:    &models.Message{Document: &models.Document{FileID: "d2", MimeType: "application/pdf"}},
			wantOK: false,
		},
		{
			name: "largest photo size",
			msg: &models.Message{Photo: []models.PhotoSize{
				{FileID: "small"}, {FileID: "big"},
			}},
			wantID:   "big",
			wantKind: kindPhoto,
			wantOK:   true,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			id, kind, ok := moshTarget(tc.msg)
			if ok != tc.wantOK {
				t.Fatalf("ok = %v, want %v", ok, tc.wantOK)
			}
			if !ok {
				return
			}
			if id != tc.wantID || kind != tc.wantKind {
				t.Errorf("got (%q, %v), want (%q, %v)", id, kind, tc.wantID, tc.wantKind)
			}
		})
	}
}

func TestAcapelaUnknownVoiceDeclines(t *testing.T) {
	t.Parallel()

	tb := &fakeBot{}
	handlers := Register(testDeps(t, tb, &stubRand{}))

	dc := groupContext(map[string]string{"voice": "nobody", "text": "hello"})
	handled, err := handlers["acapela"](context.Background(), dc)
	if err != nil {
		t.Fatal(err)
	}
	if handled {
		t.Error("unknown voice must decline so later triggers can match")
	}
	if len(tb.voices) != 0 || len(tb.actions) != 0 {
		t.Error("declined acapela must have no side effects")
	}
}

func TestAcapelaWithoutCredentialsFails(t *testing.T) {
	t.Parallel()

	tb := &fakeBot{}
	deps := testDeps(t, tb, &stubRand{})
	client, err := acapela.New("", "", nil)
	if err != nil {
		t.Fatal(err)
	}
	deps.Acapela = client
	handlers := Register(deps)

	dc := groupContext(map[string]string{"voice": "scott", "text": "hello"})
	_, err = handlers["acapela"](context.Background(), dc)
	if err == nil {
		t.Fatal("expected synthesis to fail without credentials")
	}
	if !strings.Contains(err.Error(), "voice synthesis failed") {
		t.Errorf("unexpected error: %v", err)
	}
	if len(tb.voices) != 0 {
		t.Error("no audio should be sent on failure")
	}
}
