package app

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ailawyer/internal/apperr"
	"ailawyer/internal/model"
	"ailawyer/internal/stream"
)

func TestChatEmptyCorpusEndsWithEmptySources(t *testing.T) {
	f := newFixture(t, &fakeLLM{reply: "Я не нашёл точных норм, но по общему правилу работник вправе получить расчёт."})
	ctx := context.Background()

	s, err := f.chat.Chat(ctx, ChatInput{UserID: 1, Message: "Какие права имеет работник при увольнении?"})
	require.NoError(t, err)
	text, done := drainStream(t, s)

	assert.Equal(t, f.llm.reply, text)
	require.Equal(t, stream.KindDone, done.Kind)
	assert.NotZero(t, done.Done.SessionID)
	assert.Empty(t, done.Done.Sources)

	raw, err := done.MarshalJSON()
	require.NoError(t, err)
	assert.Contains(t, string(raw), `"sources":[]`)

	detail, err := f.chat.GetSession(ctx, 1, done.Done.SessionID)
	require.NoError(t, err)
	require.Len(t, detail.Messages, 2)
	assert.Equal(t, model.RoleUser, detail.Messages[0].Role)
	assert.Equal(t, "Какие права имеет работник при увольнении?", detail.Messages[0].Content)
	assert.Equal(t, f.llm.reply, detail.Messages[1].Content)
	assert.Equal(t, "risk-manager", detail.Session.SessionType)
}

func TestChatReusesSession(t *testing.T) {
	f := newFixture(t, &fakeLLM{reply: "Ответ"})
	ctx := context.Background()

	s, err := f.chat.Chat(ctx, ChatInput{UserID: 1, Mode: "hr", Message: "Как уволить работника по соглашению сторон?"})
	require.NoError(t, err)
	_, first := drainStream(t, s)
	sessionID := first.Done.SessionID

	s, err = f.chat.Chat(ctx, ChatInput{UserID: 1, Mode: "hr", SessionID: sessionID, Message: "А какие выплаты положены?"})
	require.NoError(t, err)
	_, second := drainStream(t, s)
	assert.Equal(t, sessionID, second.Done.SessionID)

	sessions, err := f.chat.ListSessions(ctx, 1)
	require.NoError(t, err)
	require.Len(t, sessions, 1)
	assert.Equal(t, 4, sessions[0].MessageCount)
	assert.Equal(t, "Как уволить работника по соглашению сторон?", sessions[0].Title)
	assert.Contains(t, f.cache.invalidated, sessionID)
}

func TestChatSessionAccess(t *testing.T) {
	f := newFixture(t, &fakeLLM{reply: "Ответ"})
	ctx := context.Background()

	id, err := f.chat.CreateOrAppendSession(ctx, 1, 0, "Вопрос", "Ответ", nil, "consultant")
	require.NoError(t, err)

	_, err = f.chat.Chat(ctx, ChatInput{UserID: 2, SessionID: id, Message: "Чужая сессия"})
	assert.ErrorIs(t, err, apperr.ErrForbidden)
	_, err = f.chat.GetSession(ctx, 2, id)
	assert.ErrorIs(t, err, apperr.ErrForbidden)
	assert.ErrorIs(t, f.chat.DeleteSession(ctx, 2, id), apperr.ErrForbidden)

	_, err = f.chat.Chat(ctx, ChatInput{UserID: 1, SessionID: 999, Message: "Нет такой"})
	assert.ErrorIs(t, err, apperr.ErrNotFound)

	require.NoError(t, f.chat.DeleteSession(ctx, 1, id))
	_, err = f.chat.GetSession(ctx, 1, id)
	assert.ErrorIs(t, err, apperr.ErrNotFound)
}

func TestChatRejectsBadInput(t *testing.T) {
	f := newFixture(t, &fakeLLM{reply: "Ответ"})
	ctx := context.Background()

	_, err := f.chat.Chat(ctx, ChatInput{UserID: 1, Message: "   "})
	assert.ErrorIs(t, err, apperr.ErrInvalidInput)
	_, err = f.chat.Chat(ctx, ChatInput{UserID: 1, Mode: "astrologer", Message: "Вопрос"})
	assert.ErrorIs(t, err, apperr.ErrInvalidInput)
}

func TestChatCancelledMidStreamPersistsNothing(t *testing.T) {
	f := newFixture(t, &fakeLLM{block: true})
	ctx, cancel := context.WithCancel(context.Background())

	s, err := f.chat.Chat(ctx, ChatInput{UserID: 1, Message: "Долгий вопрос"})
	require.NoError(t, err)
	<-s.Events()
	cancel()
	_, last := drainStream(t, s)
	assert.Equal(t, stream.KindError, last.Kind)
	assert.Equal(t, "canceled", last.Code)

	sessions, err := f.chat.ListSessions(context.Background(), 1)
	require.NoError(t, err)
	assert.Empty(t, sessions)
}

func TestConcurrentAppendsKeepCountExact(t *testing.T) {
	f := newFixture(t, &fakeLLM{reply: "Ответ"})
	ctx := context.Background()
	id, err := f.chat.CreateOrAppendSession(ctx, 1, 0, "Первый", "Ответ", nil, "consultant")
	require.NoError(t, err)

	const turns = 8
	var wg sync.WaitGroup
	errs := make(chan error, turns)
	for i := 0; i < turns; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := f.chat.CreateOrAppendSession(ctx, 1, id, "Ещё", "Ответ", nil, "consultant")
			errs <- err
		}()
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		require.NoError(t, err)
	}

	detail, err := f.chat.GetSession(ctx, 1, id)
	require.NoError(t, err)
	assert.Equal(t, 2*(turns+1), detail.Session.MessageCount)
	assert.Len(t, detail.Messages, 2*(turns+1))
	assert.Zero(t, f.chat.locks.size())
}

func TestHistoryFillRacingAnAppendIsDropped(t *testing.T) {
	f := newFixture(t, &fakeLLM{reply: "Ответ"})
	ctx := context.Background()
	id, err := f.chat.CreateOrAppendSession(ctx, 1, 0, "Первый вопрос", "Первый ответ", nil, "consultant")
	require.NoError(t, err)

	var once sync.Once
	f.cache.beforeSet = func(sid uint) {
		once.Do(func() {
			_, err := f.chat.CreateOrAppendSession(ctx, 1, sid, "Второй вопрос", "Второй ответ", nil, "consultant")
			require.NoError(t, err)
		})
	}

	stale, err := f.chat.recentHistory(ctx, id)
	require.NoError(t, err)
	assert.Len(t, stale, 2)
	assert.False(t, f.cache.cached(id))

	fresh, err := f.chat.recentHistory(ctx, id)
	require.NoError(t, err)
	assert.Len(t, fresh, 4)
	assert.True(t, f.cache.cached(id))
}
