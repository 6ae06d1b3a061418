package service

import (
	"testing"

	"TR_telegram_taskbot/internal/model"

	"github.com/stretchr/testify/assert"
)

func TestDetectTaskType(t *testing.T) {
	tests := []struct {
		link string
		want model.TaskType
	}{
		{"https://t.me/join_us", model.TaskTypeTelegram},
		{"https://t.me/+AbCdEf123", model.TaskTypeTelegram},
		{"https://telegram.org/blog", model.TaskTypeTelegram},
		{"https://twitter.com/user", model.TaskTypeTwitter},
		{"https://x.com/intent/tweet?text=hi", model.TaskTypeTwitter},
		{"https://example.com/", model.TaskTypeOther},
		{"https://example.com/intent/follow", model.TaskTypeTwitter},
		{"https://example.com/telegram/page", model.TaskTypeTelegram},
		{"t.me/nakedlink", model.TaskTypeTelegram},
		{"twitter.com/nakedlink", model.TaskTypeTwitter},
		{"just some text", model.TaskTypeOther},
		{"", model.TaskTypeOther},
	}

	for _, tt := range tests {
		t.Run(tt.link, func(t *testing.T) {
			assert.Equal(t, tt.want, DetectTaskType(tt.link))
		})
	}
}

func TestTargetChat(t *testing.T) {
	tests := []struct {
		link string
		want string
	}{
		{"https://t.me/mychannel", "@mychannel"},
		{"https://t.me/mychannel/42", "@mychannel"},
		{"https://t.me/+privateinvite", ""},
		{"https://t.me/joinchat/AbCdEf", ""},
		{"https://example.com/mychannel", ""},
		{"not a link", ""},
	}

	for _, tt := range tests {
		t.Run(tt.link, func(t *testing.T) {
			assert.Equal(t, tt.want, TargetChat(tt.link))
		})
	}
}

func TestParseReward(t *testing.T) {
	tests := []struct {
		input  string
		reward int
		ok     bool
	}{
		{"50", 50, true},
		{" 50 ", 50, true},
		{"1", 1, true},
		{"0", 0, false},
		{"-5", 0, false},
		{"fifty", 0, false},
		{"", 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			reward, err := ParseReward(tt.input)
			if tt.ok {
				assert.NoError(t, err)
				assert.Equal(t, tt.reward, reward)
			} else {
				assert.Error(t, err)
			}
		})
	}
}

func TestParseTaskEdit(t *testing.T) {
	t.Run("well-formed line", func(t *testing.T) {
		draft, active, err := ParseTaskEdit("Join channel | Subscribe and stay | https://t.me/example | 50 | true")
		assert.NoError(t, err)
		assert.Equal(t, "Join channel", draft.Title)
		assert.Equal(t, "Subscribe and stay", draft.Description)
		assert.Equal(t, "https://t.me/example", draft.Link)
		assert.Equal(t, 50, draft.Reward)
		assert.Equal(t, model.TaskTypeTelegram, draft.Type)
		assert.True(t, active)
	})

	t.Run("inactive flag", func(t *testing.T) {
		_, active, err := ParseTaskEdit("a|b|https://example.com|10|FALSE")
		assert.NoError(t, err)
		assert.False(t, active)
	})

	tests := []struct {
		name string
		line string
	}{
		{"too few fields", "title|desc|link|10"},
		{"too many fields", "title|desc|link|10|true|extra"},
		{"non-numeric reward", "title|desc|link|ten|true"},
		{"zero reward", "title|desc|link|0|true"},
		{"negative reward", "title|desc|link|-5|true"},
		{"empty line", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, err := ParseTaskEdit(tt.line)
			assert.ErrorIs(t, err, ErrMalformedEdit)
		})
	}
}
