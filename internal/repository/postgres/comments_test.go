package postgres_test

import (
	"fmt"
	"testing"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/require"

	"github.com/vidtube/vidtube/internal/apperrors"
	"github.com/vidtube/vidtube/internal/models"
	"github.com/vidtube/vidtube/internal/repository"
	"github.com/vidtube/vidtube/internal/repository/postgres"
	"github.com/vidtube/vidtube/internal/testutil"
)

func Test_CommentRepo(t *testing.T) {
	t.Parallel()

	pg := testutil.StartPostgresContainer(t)
	t.Cleanup(pg.Terminate)

	withVideo := func(t *testing.T, fn func(s *postgres.Storage, author models.User, video models.Video)) {
		testutil.WithTx(pg.Pool, t, func(tx pgx.Tx) {
			s := postgres.NewStorage(tx)

			author, err := s.User().CreateUser(t.Context(), newUserParams("author", "author@example.com"))
			require.NoError(t, err)

			video, err := s.Video().CreateVideo(t.Context(), repository.CreateVideoParams{
				OwnerID:      author.ID,
				Title:        "commented",
				VideoURL:     "https://cdn.example.com/media/commented",
				ThumbnailURL: "https://cdn.example.com/media/commented-thumb",
			})
			require.NoError(t, err)

			fn(s, author, video)
		})
	}

	t.Run("create", func(t *testing.T) {
		withVideo(t, func(s *postgres.Storage, author models.User, video models.Video) {
			comment, err := s.Comment().CreateComment(t.Context(), video.ID, author.ID, "nice one")

			require.NoError(t, err)
			require.Equal(t, video.ID, comment.VideoID)
			require.Equal(t, author.ID, comment.OwnerID)
			require.Equal(t, "nice one", comment.Content)
		})
	})

	t.Run("create on missing video", func(t *testing.T) {
		withVideo(t, func(s *postgres.Storage, author models.User, _ models.Video) {
			_, err := s.Comment().CreateComment(t.Context(), uuid.New(), author.ID, "into the void")
			require.ErrorIs(t, err, apperrors.ErrVideoNotFound)
		})
	})

	t.Run("list with owners", func(t *testing.T) {
		withVideo(t, func(s *postgres.Storage, author models.User, video models.Video) {
			for i := range 3 {
				_, err := s.Comment().CreateComment(t.Context(), video.ID, author.ID, fmt.Sprintf("comment %d", i))
				require.NoError(t, err)
			}

			comments, total, err := s.Comment().ListByVideo(t.Context(), video.ID, 1, 2)

			require.NoError(t, err)
			require.Equal(t, int64(3), total)
			require.Len(t, comments, 2)
			require.Equal(t, author.ID, comments[0].Owner.ID)
			require.Equal(t, "author", comments[0].Owner.Username)
		})
	})

	t.Run("list empty", func(t *testing.T) {
		withVideo(t, func(s *postgres.Storage, _ models.User, video models.Video) {
			comments, total, err := s.Comment().ListByVideo(t.Context(), video.ID, 1, 10)

			require.NoError(t, err)
			require.Zero(t, total)
			require.Empty(t, comments)
		})
	})
}
