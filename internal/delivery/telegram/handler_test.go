package telegram

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"

	"github.com/aliskhannn/exam-bot/internal/domain/entities"
	"github.com/aliskhannn/exam-bot/internal/generator"
	"github.com/aliskhannn/exam-bot/internal/session"
	"github.com/aliskhannn/exam-bot/internal/storage"
)

const testChatID = int64(100)

type fakeBot struct {
	mu       sync.Mutex
	nextID   int
	sent     []tgbotapi.Chattable
	requests []tgbotapi.Chattable
	updates  chan tgbotapi.Update
	stopped  bool
}

func newFakeBot() *fakeBot {
	return &fakeBot{nextID: 1, updates: make(chan tgbotapi.Update, 10)}
}

func (b *fakeBot) Send(c tgbotapi.Chattable) (tgbotapi.Message, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.sent = append(b.sent, c)
	b.nextID++
	return tgbotapi.Message{MessageID: b.nextID}, nil
}

func (b *fakeBot) Request(c tgbotapi.Chattable) (*tgbotapi.APIResponse, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.requests = append(b.requests, c)
	return &tgbotapi.APIResponse{Ok: true}, nil
}

func (b *fakeBot) GetUpdatesChan(tgbotapi.UpdateConfig) tgbotapi.UpdatesChannel {
	return b.updates
}

func (b *fakeBot) StopReceivingUpdates() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.stopped = true
}

func (b *fakeBot) messages() []tgbotapi.MessageConfig {
	b.mu.Lock()
	defer b.mu.Unlock()
	var out []tgbotapi.MessageConfig
	for _, c := range b.sent {
		if m, ok := c.(tgbotapi.MessageConfig); ok {
			out = append(out, m)
		}
	}
	return out
}

func (b *fakeBot) lastMessage() tgbotapi.MessageConfig {
	msgs := b.messages()
	if len(msgs) == 0 {
		return tgbotapi.MessageConfig{}
	}
	return msgs[len(msgs)-1]
}

func (b *fakeBot) textEdits() []tgbotapi.EditMessageTextConfig {
	b.mu.Lock()
	defer b.mu.Unlock()
	var out []tgbotapi.EditMessageTextConfig
	for _, c := range b.requests {
		if e, ok := c.(tgbotapi.EditMessageTextConfig); ok {
			out = append(out, e)
		}
	}
	return out
}

func (b *fakeBot) callbackAnswers() []tgbotapi.CallbackConfig {
	b.mu.Lock()
	defer b.mu.Unlock()
	var out []tgbotapi.CallbackConfig
	for _, c := range b.requests {
		if cb, ok := c.(tgbotapi.CallbackConfig); ok {
			out = append(out, cb)
		}
	}
	return out
}

type stubFetcher struct {
	set *entities.QuizSet
	err error
}

func (f *stubFetcher) Fetch(context.Context, entities.QuizRequest) (*entities.QuizSet, error) {
	return f.set, f.err
}

type stubPreferences struct {
	prefs *entities.Preferences
	err   error
}

func (s *stubPreferences) GetOrDefault(_ context.Context, chatID int64) (*entities.Preferences, error) {
	if s.err != nil {
		return nil, s.err
	}
	p := *s.prefs
	p.ChatID = chatID
	return &p, nil
}

func (s *stubPreferences) SetTopic(_ context.Context, _ int64, topic string) (*entities.Preferences, error) {
	s.prefs.Topic = topic
	return s.prefs, nil
}

func (s *stubPreferences) SetDifficulty(_ context.Context, _ int64, d string) (*entities.Preferences, error) {
	parsed, err := entities.ParseDifficulty(d)
	if err != nil {
		return nil, err
	}
	s.prefs.Difficulty = parsed
	return s.prefs, nil
}

func (s *stubPreferences) SetCount(_ context.Context, _ int64, n int) (*entities.Preferences, error) {
	if n <= 0 {
		return nil, entities.ErrInvalidRequest
	}
	s.prefs.Count = n
	return s.prefs, nil
}

func (s *stubPreferences) SetLanguage(_ context.Context, _ int64, l string) (*entities.Preferences, error) {
	s.prefs.Language = l
	return s.prefs, nil
}

func twoQuestionSet() *entities.QuizSet {
	return &entities.QuizSet{
		Topic:      "CS",
		Difficulty: "easy",
		Questions: []entities.Question{
			{ID: "q1", Stem: "2+2?", Choices: []string{"3", "4", "5", "6"}, CorrectIndex: 1, Explanation: "basic math"},
			{ID: "q2", Stem: "Go keyword?", Choices: []string{"def", "fn", "func", "fun"}, CorrectIndex: 2, Explanation: "func declares"},
		},
	}
}

type testEnv struct {
	bot      *fakeBot
	sessions *storage.SessionStorage[*session.Controller]
	prefs    *stubPreferences
	handler  *Handler
}

func newTestEnv(fetcher session.Fetcher, language string) *testEnv {
	bot := newFakeBot()
	sessions := storage.NewSessionStorage[*session.Controller]()
	prefs := &stubPreferences{prefs: &entities.Preferences{
		Topic:      "CS",
		Difficulty: entities.DifficultyEasy,
		Count:      2,
		Language:   language,
	}}
	return &testEnv{
		bot:      bot,
		sessions: sessions,
		prefs:    prefs,
		handler:  NewHandler(bot, zap.NewNop(), fetcher, sessions, prefs),
	}
}

func commandUpdate(text string) tgbotapi.Update {
	cmd := strings.Fields(text)[0]
	return tgbotapi.Update{Message: &tgbotapi.Message{
		MessageID: 1,
		From:      &tgbotapi.User{ID: 7},
		Chat:      &tgbotapi.Chat{ID: testChatID},
		Text:      text,
		Entities:  []tgbotapi.MessageEntity{{Type: "bot_command", Offset: 0, Length: len(cmd)}},
	}}
}

func callbackUpdate(data string) tgbotapi.Update {
	return tgbotapi.Update{CallbackQuery: &tgbotapi.CallbackQuery{
		ID:   "cb",
		From: &tgbotapi.User{ID: 7},
		Message: &tgbotapi.Message{
			MessageID: 50,
			Chat:      &tgbotapi.Chat{ID: testChatID},
		},
		Data: data,
	}}
}

func (e *testEnv) startQuiz(t *testing.T, text string) *session.Controller {
	t.Helper()
	e.handler.handleUpdate(context.Background(), commandUpdate(text))
	e.handler.running.Wait()

	ctrl, ok := e.sessions.Get(testChatID)
	if !ok {
		t.Fatal("expected a live session")
	}
	return ctrl
}

func (e *testEnv) press(data string) {
	e.handler.handleUpdate(context.Background(), callbackUpdate(data))
}

func TestQuizFlowScenario(t *testing.T) {
	env := newTestEnv(&stubFetcher{set: twoQuestionSet()}, "English")
	ctrl := env.startQuiz(t, "/quiz")
	id := ctrl.ID()

	q := env.bot.lastMessage()
	if !strings.Contains(q.Text, "Q1:") || !strings.Contains(q.Text, "2+2?") {
		t.Fatalf("expected first question, got %q", q.Text)
	}
	kb, ok := q.ReplyMarkup.(tgbotapi.InlineKeyboardMarkup)
	if !ok || len(kb.InlineKeyboard) != 5 {
		t.Fatalf("expected 4 choice rows and a navigation row, got %+v", q.ReplyMarkup)
	}
	if strings.HasPrefix(q.Text, rlm) {
		t.Error("english question must not carry rtl marks")
	}

	env.press(buildQuizAnswerCallback(id, 0, 1))
	edits := env.bot.textEdits()
	if len(edits) != 1 || !strings.Contains(edits[0].Text, "Correct!") || !strings.Contains(edits[0].Text, "basic math") {
		t.Fatalf("expected verdict edit, got %+v", edits)
	}
	if edits[0].ReplyMarkup == nil || len(edits[0].ReplyMarkup.InlineKeyboard) != 1 {
		t.Errorf("expected choices to be replaced by navigation, got %+v", edits[0].ReplyMarkup)
	}

	env.press(buildQuizNextCallback(id, 0))
	if !strings.Contains(env.bot.lastMessage().Text, "Q2:") {
		t.Fatalf("expected second question, got %q", env.bot.lastMessage().Text)
	}

	env.press(buildQuizAnswerCallback(id, 1, 2))
	env.press(buildQuizNextCallback(id, 1))

	result := env.bot.lastMessage().Text
	if !strings.Contains(result, "2/2") {
		t.Fatalf("expected final score 2/2, got %q", result)
	}
	if ctrl.State().Phase != entities.PhaseCompleted {
		t.Errorf("expected completed phase, got %s", ctrl.State().Phase)
	}
	if _, ok := env.sessions.Get(testChatID); ok {
		t.Error("completed session should be removed")
	}
}

func TestQuizTopicOverride(t *testing.T) {
	fetcher := &recordingFetcher{set: twoQuestionSet()}
	env := newTestEnv(fetcher, "English")
	env.startQuiz(t, "/quiz Linear Algebra")

	if fetcher.req.Topic != "Linear Algebra" {
		t.Errorf("expected topic override, got %q", fetcher.req.Topic)
	}
	if fetcher.req.Count != 2 || fetcher.req.Difficulty != entities.DifficultyEasy {
		t.Errorf("expected stored preferences, got %+v", fetcher.req)
	}
}

type recordingFetcher struct {
	set *entities.QuizSet
	req entities.QuizRequest
}

func (f *recordingFetcher) Fetch(_ context.Context, req entities.QuizRequest) (*entities.QuizSet, error) {
	f.req = req
	return f.set, nil
}

func TestQuizArabicUsesRTLMarks(t *testing.T) {
	env := newTestEnv(&stubFetcher{set: twoQuestionSet()}, "Arabic")
	env.startQuiz(t, "/quiz")

	q := env.bot.lastMessage()
	for _, line := range strings.Split(q.Text, "\n") {
		if line != "" && !strings.HasPrefix(line, rlm) {
			t.Errorf("expected rtl mark on line %q", line)
		}
	}
}

func TestQuizFetchFailure(t *testing.T) {
	env := newTestEnv(&stubFetcher{set: &entities.QuizSet{Questions: []entities.Question{}}}, "English")
	env.handler.handleUpdate(context.Background(), commandUpdate("/quiz"))
	env.handler.running.Wait()

	edits := env.bot.textEdits()
	if len(edits) != 1 || !strings.Contains(edits[0].Text, session.MsgNoQuestions) {
		t.Fatalf("expected loading message to be replaced by the error, got %+v", edits)
	}
	for _, m := range env.bot.messages() {
		if strings.Contains(m.Text, "Q1:") {
			t.Fatal("no question may be shown after a failed fetch")
		}
	}
	if _, ok := env.sessions.Get(testChatID); ok {
		t.Error("failed session should be removed")
	}
}

func TestQuizTransportFailure(t *testing.T) {
	env := newTestEnv(&stubFetcher{err: &generator.FetchError{Kind: generator.KindTransport, Message: "refused"}}, "English")
	env.handler.handleUpdate(context.Background(), commandUpdate("/quiz"))
	env.handler.running.Wait()

	edits := env.bot.textEdits()
	if len(edits) != 1 || !strings.Contains(edits[0].Text, session.MsgLoadFailed) {
		t.Fatalf("expected transport error message, got %+v", edits)
	}
}

func TestQuizPreferencesFailure(t *testing.T) {
	env := newTestEnv(&stubFetcher{set: twoQuestionSet()}, "English")
	env.prefs.err = errors.New("db down")

	env.handler.handleUpdate(context.Background(), commandUpdate("/quiz"))
	env.handler.running.Wait()

	if got := env.bot.lastMessage().Text; got != msgInternalError {
		t.Errorf("expected internal error message, got %q", got)
	}
	if _, ok := env.sessions.Get(testChatID); ok {
		t.Error("no session should be created")
	}
}

func TestStaleCallbacks(t *testing.T) {
	env := newTestEnv(&stubFetcher{set: twoQuestionSet()}, "English")
	ctrl := env.startQuiz(t, "/quiz")
	id := ctrl.ID()

	tests := []struct {
		name string
		data string
		want string
	}{
		{"other session", buildQuizAnswerCallback("old-session", 0, 1), msgExamClosed},
		{"old question", buildQuizAnswerCallback(id, 1, 1), msgQuestionClosed},
		{"old next", buildQuizNextCallback(id, 3), msgQuestionClosed},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env.press(tt.data)
			answers := env.bot.callbackAnswers()
			if got := answers[len(answers)-1].Text; got != tt.want {
				t.Errorf("expected toast %q, got %q", tt.want, got)
			}
		})
	}

	if state := ctrl.State(); state.Phase != entities.PhaseActive || state.Score != 0 {
		t.Errorf("stale callbacks must not change the session, got %+v", state)
	}

	env.press(buildQuizAnswerCallback(id, 0, 0))
	env.press(buildQuizAnswerCallback(id, 0, 1))
	answers := env.bot.callbackAnswers()
	if got := answers[len(answers)-1].Text; got != msgAnswerLocked {
		t.Errorf("expected answer locked toast, got %q", got)
	}
	if ctrl.State().Score != 0 {
		t.Errorf("second answer must not score, got %d", ctrl.State().Score)
	}
}

func TestSubmitCommand(t *testing.T) {
	env := newTestEnv(&stubFetcher{set: twoQuestionSet()}, "English")
	ctrl := env.startQuiz(t, "/quiz")

	env.press(buildQuizAnswerCallback(ctrl.ID(), 0, 1))
	env.handler.handleUpdate(context.Background(), commandUpdate("/submit"))

	if !strings.Contains(env.bot.lastMessage().Text, "1/2") {
		t.Fatalf("expected score 1/2, got %q", env.bot.lastMessage().Text)
	}
	if ctrl.State().CurrentIndex != 0 {
		t.Errorf("submit must not move the index, got %d", ctrl.State().CurrentIndex)
	}

	env.handler.handleUpdate(context.Background(), commandUpdate("/submit"))
	if got := env.bot.lastMessage().Text; got != msgNoActiveExam {
		t.Errorf("expected no active exam message, got %q", got)
	}
}

func TestNewQuizReplacesRunningOne(t *testing.T) {
	env := newTestEnv(&stubFetcher{set: twoQuestionSet()}, "English")
	first := env.startQuiz(t, "/quiz")
	second := env.startQuiz(t, "/quiz")

	if first.ID() == second.ID() {
		t.Fatal("expected a new session")
	}
	if err := first.Advance(); !errors.Is(err, session.ErrClosed) {
		t.Errorf("expected replaced session to be closed, got %v", err)
	}

	env.press(buildQuizAnswerCallback(first.ID(), 0, 1))
	answers := env.bot.callbackAnswers()
	if got := answers[len(answers)-1].Text; got != msgExamClosed {
		t.Errorf("expected exam closed toast, got %q", got)
	}
}

func TestSettingsCallbacks(t *testing.T) {
	env := newTestEnv(&stubFetcher{set: twoQuestionSet()}, "English")

	env.handler.handleUpdate(context.Background(), commandUpdate("/settings"))
	if !strings.Contains(env.bot.lastMessage().Text, "Exam settings") {
		t.Fatalf("expected settings screen, got %q", env.bot.lastMessage().Text)
	}

	env.press(buildSettingsCallback(settingsDifficulty, "hard"))
	env.press(buildSettingsCallback(settingsCount, "10"))
	env.press(buildSettingsCallback(settingsLanguage, "Arabic"))

	p := env.prefs.prefs
	if p.Difficulty != entities.DifficultyHard || p.Count != 10 || p.Language != "Arabic" {
		t.Errorf("unexpected preferences: %+v", p)
	}

	edits := env.bot.textEdits()
	if len(edits) != 3 || !strings.Contains(edits[2].Text, "Arabic") {
		t.Errorf("expected settings message to be refreshed, got %d edits", len(edits))
	}

	env.press(buildSettingsCallback(settingsDifficulty, "insane"))
	answers := env.bot.callbackAnswers()
	if got := answers[len(answers)-1].Text; got != "Invalid value." {
		t.Errorf("expected invalid value toast, got %q", got)
	}
}

func TestTopicCommand(t *testing.T) {
	env := newTestEnv(&stubFetcher{set: twoQuestionSet()}, "English")

	env.handler.handleUpdate(context.Background(), commandUpdate("/topic"))
	if got := env.bot.lastMessage().Text; got != msgUseTopic {
		t.Errorf("expected usage, got %q", got)
	}

	env.handler.handleUpdate(context.Background(), commandUpdate("/topic Operating <Systems>"))
	if env.prefs.prefs.Topic != "Operating <Systems>" {
		t.Errorf("unexpected topic %q", env.prefs.prefs.Topic)
	}
	if got := env.bot.lastMessage().Text; !strings.Contains(got, "Operating &lt;Systems&gt;") {
		t.Errorf("expected escaped topic, got %q", got)
	}
}

func TestUnknownCommand(t *testing.T) {
	env := newTestEnv(&stubFetcher{}, "English")
	env.handler.handleUpdate(context.Background(), commandUpdate("/dance"))

	if got := env.bot.lastMessage().Text; got != msgUnknownCommand {
		t.Errorf("expected unknown command message, got %q", got)
	}
}

func TestRunStopsOnContext(t *testing.T) {
	env := newTestEnv(&stubFetcher{set: twoQuestionSet()}, "English")
	ctx, cancel := context.WithCancel(context.Background())

	done := make(chan error, 1)
	go func() { done <- env.handler.Run(ctx) }()

	env.bot.updates <- commandUpdate("/start")
	cancel()

	select {
	case err := <-done:
		if !errors.Is(err, context.Canceled) {
			t.Errorf("expected context.Canceled, got %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("handler did not stop")
	}

	env.bot.mu.Lock()
	defer env.bot.mu.Unlock()
	if !env.bot.stopped {
		t.Error("expected updates to be stopped")
	}
}

func TestCallbackDataRoundTrip(t *testing.T) {
	id := "0b7f4d8e-2c1a-4f7e-9d3b-5a6c7e8f9a0b"
	data := buildQuizAnswerCallback(id, 12, 3)
	if len(data) > 64 {
		t.Fatalf("callback data exceeds telegram limit: %d bytes", len(data))
	}

	cd := decodeCallback(data)
	if cd.Action != actionQuiz || cd.param(0) != quizAnswer || cd.param(1) != id {
		t.Errorf("unexpected decode: %+v", cd)
	}
	if n, ok := cd.intParam(2); !ok || n != 12 {
		t.Errorf("expected question 12, got %d %v", n, ok)
	}
	if n, ok := cd.intParam(3); !ok || n != 3 {
		t.Errorf("expected choice 3, got %d %v", n, ok)
	}
	if _, ok := cd.intParam(4); ok {
		t.Error("expected missing param to fail")
	}

	if got := buildQuizStartCallback(); got != "quiz:start" {
		t.Errorf("unexpected start callback %q", got)
	}
	if got := buildSettingsCallback(settingsCount, "5"); got != "settings:count:5" {
		t.Errorf("unexpected settings callback %q", got)
	}
	if cd := decodeCallback(""); cd.Action != "" {
		t.Errorf("expected empty action, got %q", cd.Action)
	}
}

func TestFormatAnswered(t *testing.T) {
	q := session.QuestionView{Index: 0, Total: 3, Stem: "a < b?", Choices: []string{"yes", "no", "maybe", "never"}}
	a := session.AnswerView{Verdict: entities.VerdictIncorrect, Explanation: "it depends", Selected: 2, CorrectIndex: 0}

	text := formatAnswered(q, a)
	for _, want := range []string{"a &lt; b?", "✅ A. yes", "❌ C. maybe", "<b>Incorrect.</b> it depends"} {
		if !strings.Contains(text, want) {
			t.Errorf("expected %q in %q", want, text)
		}
	}
}

func TestFormatResult(t *testing.T) {
	tests := []struct {
		score, total int
		want         string
	}{
		{2, 2, "2/2</b> (100%)"},
		{1, 4, "1/4</b> (25%)"},
		{0, 0, "0/0</b> (0%)"},
	}
	for _, tt := range tests {
		if got := formatResult(tt.score, tt.total); !strings.Contains(got, tt.want) {
			t.Errorf("%d/%d: expected %q in %q", tt.score, tt.total, tt.want, got)
		}
	}
}

func TestTruncate(t *testing.T) {
	if got := truncate("short", 10); got != "short" {
		t.Errorf("unexpected %q", got)
	}
	long := strings.Repeat("я", 80)
	got := truncate(long, maxButtonRunes)
	if n := len([]rune(got)); n != maxButtonRunes {
		t.Errorf("expected %d runes, got %d", maxButtonRunes, n)
	}
	if !strings.HasSuffix(got, "…") {
		t.Errorf("expected ellipsis, got %q", got)
	}
}

func TestQuestionKeyboard(t *testing.T) {
	id := "0b7f4d8e-2c1a-4f7e-9d3b-5a6c7e8f9a0b"
	q := session.QuestionView{
		Index:   19,
		Total:   20,
		Stem:    "stem",
		Choices: []string{strings.Repeat("x", 200), "b", "c", "d"},
		RTL:     true,
	}

	kb := buildQuestionKeyboard(id, q)
	if len(kb.InlineKeyboard) != 5 {
		t.Fatalf("expected 5 rows, got %d", len(kb.InlineKeyboard))
	}
	for _, row := range kb.InlineKeyboard {
		for _, b := range row {
			if b.CallbackData == nil || len(*b.CallbackData) > 64 {
				t.Errorf("callback data missing or too long: %v", b.CallbackData)
			}
		}
	}
	first := kb.InlineKeyboard[0][0].Text
	if !strings.HasPrefix(first, rlm+"A. ") {
		t.Errorf("expected rtl label, got %q", first)
	}
	if !strings.HasSuffix(first, "…") {
		t.Errorf("expected long choice to be truncated, got %q", first)
	}
}
