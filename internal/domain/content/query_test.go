package content

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/streamhub/engagement-hub/internal/domain/shared"
)

func TestResolveSort(t *testing.T) {
	tests := []struct {
		kind    Kind
		field   string
		want    Column
		wantErr error
	}{
		{KindVideo, "", ColumnCreatedAt, nil},
		{KindVideo, "views", ColumnViews, nil},
		{KindVideo, "duration", ColumnDuration, nil},
		{KindVideo, "title", ColumnTitle, nil},
		{KindVideo, "owner_id; DROP TABLE videos", "", shared.ErrValidation},
		{KindComment, "createdAt", ColumnCreatedAt, nil},
		{KindComment, "views", "", shared.ErrValidation},
		{KindChannel, "username", ColumnUsername, nil},
		{Kind("playlists"), "createdAt", "", shared.ErrInvalidInput},
	}
	for _, tt := range tests {
		t.Run(string(tt.kind)+"/"+tt.field, func(t *testing.T) {
			got, err := ResolveSort(tt.kind, tt.field)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestFilter_Validate(t *testing.T) {
	videoID := shared.GenerateID().String()

	assert.NoError(t, Filter{}.Validate(KindVideo))
	assert.ErrorIs(t, Filter{}.Validate(KindComment), shared.ErrValidation)
	assert.NoError(t, Filter{VideoID: videoID}.Validate(KindComment))
	assert.ErrorIs(t, Filter{LikedBy: "nope"}.Validate(KindVideo), shared.ErrInvalidID)
}

func TestParseKind(t *testing.T) {
	k, err := ParseKind("Videos")
	require.NoError(t, err)
	assert.Equal(t, KindVideo, k)

	_, err = ParseKind("playlists")
	assert.ErrorIs(t, err, shared.ErrInvalidInput)
}
