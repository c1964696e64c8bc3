package relation

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/streamhub/engagement-hub/internal/domain/content"
	"github.com/streamhub/engagement-hub/internal/domain/shared"
)

func TestParseKind(t *testing.T) {
	tests := []struct {
		in      string
		want    Kind
		wantErr bool
	}{
		{"video-like", KindVideoLike, false},
		{"Comment-Like", KindCommentLike, false},
		{"subscription", KindSubscription, false},
		{"SUBSCRIPTION", KindSubscription, false},
		{"video_like", KindVideoLike, false},
		{"dislike", "", true},
		{"", "", true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseKind(tt.in)
			if tt.wantErr {
				require.Error(t, err)
				assert.True(t, errors.Is(err, shared.ErrInvalidInput))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestKind_TargetKindAndSlugRoundTrip(t *testing.T) {
	for _, k := range []Kind{KindVideoLike, KindCommentLike, KindSubscription} {
		parsed, err := ParseKind(k.Slug())
		require.NoError(t, err)
		assert.Equal(t, k, parsed)

		back, err := ForContent(k.TargetKind())
		require.NoError(t, err)
		assert.Equal(t, k, back)
	}
	assert.Equal(t, content.KindChannel, KindSubscription.TargetKind())
	assert.True(t, KindSubscription.ForbidsSelf())
	assert.False(t, KindVideoLike.ForbidsSelf())
}
