package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestClassify(t *testing.T) {
	tests := []struct {
		name string
		m    Mention
		want Classification
	}{
		{
			name: "conversation starts at the mention",
			m:    Mention{ID: "10", ConversationID: "10"},
			want: Classification{Kind: KindRoot},
		},
		{
			name: "reply inside an existing conversation",
			m:    Mention{ID: "11", ConversationID: "5"},
			want: Classification{Kind: KindReply, RootID: "5"},
		},
		{
			name: "missing conversation id cannot be resolved",
			m:    Mention{ID: "12"},
			want: Classification{Kind: KindReply, RootID: ""},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Classify(tt.m))
		})
	}
}

func TestClassifyIsPure(t *testing.T) {
	m := Mention{ID: "10", ConversationID: "10", Text: "hi"}
	first := Classify(m)
	second := Classify(m)
	assert.Equal(t, first, second)
	assert.Equal(t, "hi", m.Text)
}
