package session

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/giantswarm/brix-meter/internal/llm"
	"github.com/giantswarm/brix-meter/internal/scorer"
	"github.com/giantswarm/brix-meter/internal/template"
	"github.com/giantswarm/brix-meter/internal/testutil"
)

func newTestService(t *testing.T, defaults Defaults) (*Service, *testutil.MockLLMClient, *[]scorer.Connection) {
	t.Helper()
	reg, err := template.NewDefaultRegistry()
	require.NoError(t, err)

	client := &testutil.MockLLMClient{DefaultResponse: "12.0"}
	var conns []scorer.Connection
	sc := scorer.NewScorer(reg, scorer.WithClientFactory(func(c scorer.Connection) llm.Client {
		conns = append(conns, c)
		return client
	}))
	return NewService(reg, sc, defaults), client, &conns
}

func TestScoreFillsEmptyFieldsFromDefaults(t *testing.T) {
	svc, client, conns := newTestService(t, Defaults{})

	result := svc.Score(context.Background(), ScoreInput{
		Text:       "apple",
		Connection: scorer.Connection{APIKey: "sk-caller"},
	})

	require.True(t, result.OK(), result.Message)
	assert.Equal(t, scorer.TierLow, result.Tier)
	require.Len(t, *conns, 1)
	assert.Equal(t, scorer.Connection{URL: DefaultAPIURL, APIKey: "sk-caller", Model: DefaultModel}, (*conns)[0])
	assert.Equal(t, DefaultModel, client.LastRequest.Model)
}

func TestScoreExplicitConnectionWins(t *testing.T) {
	svc, _, conns := newTestService(t, Defaults{URL: "https://default.example.com", Model: "default-model"})

	explicit := scorer.Connection{URL: "https://explicit.example.com", APIKey: "sk-explicit", Model: "explicit-model"}
	result := svc.Score(context.Background(), ScoreInput{Text: "apple", Connection: explicit})

	require.True(t, result.OK())
	assert.Equal(t, explicit, (*conns)[0])
}

func TestScoreWithoutKeyIsRejected(t *testing.T) {
	svc, client, conns := newTestService(t, Defaults{URL: "https://default.example.com", Model: "default-model"})

	for _, key := range []string{"", "badkey"} {
		result := svc.Score(context.Background(), ScoreInput{
			Text:       "apple",
			Connection: scorer.Connection{APIKey: key},
		})
		assert.ErrorIs(t, result.Err, scorer.ErrInvalidCredential)
		assert.Equal(t, scorer.TierUnavailable, result.Tier)
	}
	assert.Empty(t, *conns)
	assert.Equal(t, 0, client.CallCount())
}

func TestAddTemplate(t *testing.T) {
	svc, client, _ := newTestService(t, Defaults{})

	out := svc.AddTemplate("absurdity", "rate the absurdity")

	assert.True(t, out.Added)
	assert.Equal(t, []string{template.DefaultName, "absurdity"}, out.Names)
	assert.Equal(t, "absurdity", out.SelectedName)
	assert.Contains(t, out.StatusMessage, "absurdity")
	assert.Equal(t, out.Names, svc.ListTemplates())

	svc.Score(context.Background(), ScoreInput{
		Text:         "x",
		TemplateName: "absurdity",
		Connection:   scorer.Connection{APIKey: "sk-x"},
	})
	assert.Equal(t, "rate the absurdity", client.LastRequest.SystemMessage)
}

func TestAddTemplateRejected(t *testing.T) {
	svc, _, _ := newTestService(t, Defaults{})

	for _, tc := range []struct{ name, text string }{{"", "text"}, {"name", ""}} {
		out := svc.AddTemplate(tc.name, tc.text)
		assert.False(t, out.Added)
		assert.Equal(t, []string{template.DefaultName}, out.Names)
		assert.Equal(t, template.DefaultName, out.SelectedName)
		assert.Contains(t, out.StatusMessage, "添加失败")
	}
}

func TestAddTemplateDuplicate(t *testing.T) {
	svc, _, _ := newTestService(t, Defaults{})
	require.True(t, svc.AddTemplate("a", "first").Added)

	out := svc.AddTemplate("a", "second")
	assert.False(t, out.Added)
	assert.Contains(t, out.StatusMessage, "已存在")
	assert.Equal(t, "first", svc.GetTemplate("a").Text)
}
