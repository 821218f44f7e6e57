package usecase

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"
	"github.com/vadimbarashkov/shortly/internal/entity"
)

type URLUseCaseTestSuite struct {
	suite.Suite
	errUnknown  error
	now         time.Time
	urlRepoMock *MockURLRepository
	codeLengths []int
	uc          *URLUseCase
}

func (suite *URLUseCaseTestSuite) SetupSuite() {
	suite.errUnknown = errors.New("unknown error")
	suite.now = time.Date(2024, time.October, 10, 12, 0, 0, 0, time.UTC)
}

func (suite *URLUseCaseTestSuite) SetupSubTest() {
	suite.urlRepoMock = new(MockURLRepository)
	suite.codeLengths = nil

	suite.uc = NewURLUseCase(7, suite.urlRepoMock)
	suite.uc.now = func() time.Time { return suite.now }
	suite.uc.newCode = func(length int) (string, error) {
		suite.codeLengths = append(suite.codeLengths, length)
		return fmt.Sprintf("code%03d", len(suite.codeLengths)), nil
	}
}

func (suite *URLUseCaseTestSuite) TearDownSubTest() {
	suite.urlRepoMock.AssertExpectations(suite.T())
}

func (suite *URLUseCaseTestSuite) TestShortenURL() {
	const originalURL = "https://example.com/page"

	suite.Run("existing url", func() {
		suite.urlRepoMock.
			On("RetrieveByOriginalURL", mock.Anything, originalURL).
			Once().
			Return(&entity.URL{
				ID:          1,
				ShortCode:   "abc1234",
				OriginalURL: originalURL,
				IsActive:    true,
			}, nil)

		url, created, err := suite.uc.ShortenURL(context.Background(), originalURL, "10.0.0.1")

		suite.NoError(err)
		suite.False(created)
		suite.Equal("abc1234", url.ShortCode)
		suite.Empty(suite.codeLengths)
		suite.urlRepoMock.AssertNotCalled(suite.T(), "Save", mock.Anything, mock.Anything)
	})

	suite.Run("lookup error", func() {
		suite.urlRepoMock.
			On("RetrieveByOriginalURL", mock.Anything, originalURL).
			Once().
			Return(nil, suite.errUnknown)

		url, created, err := suite.uc.ShortenURL(context.Background(), originalURL, "10.0.0.1")

		suite.ErrorIs(err, suite.errUnknown)
		suite.False(created)
		suite.Nil(url)
	})

	suite.Run("short code generation error", func() {
		suite.uc.newCode = func(int) (string, error) {
			return "", suite.errUnknown
		}

		suite.urlRepoMock.
			On("RetrieveByOriginalURL", mock.Anything, originalURL).
			Once().
			Return(nil, entity.ErrURLNotFound)

		url, _, err := suite.uc.ShortenURL(context.Background(), originalURL, "10.0.0.1")

		suite.ErrorIs(err, suite.errUnknown)
		suite.Nil(url)
	})

	suite.Run("maximum retries error", func() {
		suite.urlRepoMock.
			On("RetrieveByOriginalURL", mock.Anything, originalURL).
			Once().
			Return(nil, entity.ErrURLNotFound)
		suite.urlRepoMock.
			On("ShortCodeExists", mock.Anything, mock.Anything).
			Times(maxShortCodeAttempts).
			Return(true, nil)

		url, _, err := suite.uc.ShortenURL(context.Background(), originalURL, "10.0.0.1")

		suite.ErrorIs(err, ErrMaxRetriesExceeded)
		suite.Nil(url)
		suite.Equal([]int{7, 7, 7, 8, 8}, suite.codeLengths)
	})

	suite.Run("existence check error", func() {
		suite.urlRepoMock.
			On("RetrieveByOriginalURL", mock.Anything, originalURL).
			Once().
			Return(nil, entity.ErrURLNotFound)
		suite.urlRepoMock.
			On("ShortCodeExists", mock.Anything, "code001").
			Once().
			Return(false, suite.errUnknown)

		url, _, err := suite.uc.ShortenURL(context.Background(), originalURL, "10.0.0.1")

		suite.ErrorIs(err, suite.errUnknown)
		suite.Nil(url)
	})

	suite.Run("collision on insert is retried", func() {
		suite.urlRepoMock.
			On("RetrieveByOriginalURL", mock.Anything, originalURL).
			Once().
			Return(nil, entity.ErrURLNotFound)
		suite.urlRepoMock.
			On("ShortCodeExists", mock.Anything, mock.Anything).
			Twice().
			Return(false, nil)
		suite.urlRepoMock.
			On("Save", mock.Anything, mock.MatchedBy(func(u *entity.URL) bool { return u.ShortCode == "code001" })).
			Once().
			Return(nil, entity.ErrShortCodeExists)
		suite.urlRepoMock.
			On("Save", mock.Anything, mock.MatchedBy(func(u *entity.URL) bool { return u.ShortCode == "code002" })).
			Once().
			Return(&entity.URL{ID: 2, ShortCode: "code002", OriginalURL: originalURL, IsActive: true}, nil)

		url, created, err := suite.uc.ShortenURL(context.Background(), originalURL, "10.0.0.1")

		suite.NoError(err)
		suite.True(created)
		suite.Equal("code002", url.ShortCode)
	})

	suite.Run("concurrent insert of same url", func() {
		existing := &entity.URL{ID: 9, ShortCode: "winner1", OriginalURL: originalURL, IsActive: true}

		suite.urlRepoMock.
			On("RetrieveByOriginalURL", mock.Anything, originalURL).
			Once().
			Return(nil, entity.ErrURLNotFound)
		suite.urlRepoMock.
			On("ShortCodeExists", mock.Anything, "code001").
			Once().
			Return(false, nil)
		suite.urlRepoMock.
			On("Save", mock.Anything, mock.Anything).
			Once().
			Return(nil, entity.ErrOriginalURLExists)
		suite.urlRepoMock.
			On("RetrieveByOriginalURL", mock.Anything, originalURL).
			Once().
			Return(existing, nil)

		url, created, err := suite.uc.ShortenURL(context.Background(), originalURL, "10.0.0.1")

		suite.NoError(err)
		suite.False(created)
		suite.Equal(existing, url)
	})

	suite.Run("unknown error", func() {
		suite.urlRepoMock.
			On("RetrieveByOriginalURL", mock.Anything, originalURL).
			Once().
			Return(nil, entity.ErrURLNotFound)
		suite.urlRepoMock.
			On("ShortCodeExists", mock.Anything, "code001").
			Once().
			Return(false, nil)
		suite.urlRepoMock.
			On("Save", mock.Anything, mock.Anything).
			Once().
			Return(nil, suite.errUnknown)

		url, _, err := suite.uc.ShortenURL(context.Background(), originalURL, "10.0.0.1")

		suite.ErrorIs(err, suite.errUnknown)
		suite.Nil(url)
	})

	suite.Run("success", func() {
		suite.urlRepoMock.
			On("RetrieveByOriginalURL", mock.Anything, originalURL).
			Once().
			Return(nil, entity.ErrURLNotFound)
		suite.urlRepoMock.
			On("ShortCodeExists", mock.Anything, "code001").
			Once().
			Return(false, nil)
		suite.urlRepoMock.
			On("Save", mock.Anything, &entity.URL{
				ShortCode:   "code001",
				OriginalURL: originalURL,
				CreatedBy:   entity.DefaultCreatedBy,
				IsActive:    true,
				CreatedAt:   suite.now,
			}).
			Once().
			Return(&entity.URL{
				ID:          3,
				ShortCode:   "code001",
				OriginalURL: originalURL,
				CreatedBy:   entity.DefaultCreatedBy,
				IsActive:    true,
				CreatedAt:   suite.now,
			}, nil)

		url, created, err := suite.uc.ShortenURL(context.Background(), originalURL, "")

		suite.NoError(err)
		suite.True(created)
		suite.Equal("code001", url.ShortCode)
		suite.Equal(originalURL, url.OriginalURL)
		suite.Zero(url.Clicks)
		suite.Nil(url.LastAccessed)
		suite.Equal([]int{7}, suite.codeLengths)
	})
}

func (suite *URLUseCaseTestSuite) TestResolveShortCode() {
	suite.Run("url not found", func() {
		suite.urlRepoMock.
			On("RetrieveAndUpdateStats", mock.Anything, "abc1234", suite.now).
			Once().
			Return(nil, entity.ErrURLNotFound)

		url, err := suite.uc.ResolveShortCode(context.Background(), "abc1234")

		suite.ErrorIs(err, entity.ErrURLNotFound)
		suite.Nil(url)
	})

	suite.Run("unknown error", func() {
		suite.urlRepoMock.
			On("RetrieveAndUpdateStats", mock.Anything, "abc1234", suite.now).
			Once().
			Return(nil, suite.errUnknown)

		url, err := suite.uc.ResolveShortCode(context.Background(), "abc1234")

		suite.ErrorIs(err, suite.errUnknown)
		suite.Nil(url)
	})

	suite.Run("success", func() {
		suite.urlRepoMock.
			On("RetrieveAndUpdateStats", mock.Anything, "abc1234", suite.now).
			Once().
			Return(&entity.URL{
				ShortCode:   "abc1234",
				OriginalURL: "https://example.com",
				URLStats: entity.URLStats{
					Clicks:       1,
					LastAccessed: &suite.now,
				},
			}, nil)

		url, err := suite.uc.ResolveShortCode(context.Background(), "abc1234")

		suite.NoError(err)
		suite.Equal("https://example.com", url.OriginalURL)
		suite.Equal(int64(1), url.Clicks)
		suite.Equal(suite.now, *url.LastAccessed)
	})
}

func (suite *URLUseCaseTestSuite) TestGetURLStats() {
	suite.Run("url not found", func() {
		suite.urlRepoMock.
			On("RetrieveByShortCode", mock.Anything, "abc1234").
			Once().
			Return(nil, entity.ErrURLNotFound)

		url, err := suite.uc.GetURLStats(context.Background(), "abc1234")

		suite.ErrorIs(err, entity.ErrURLNotFound)
		suite.Nil(url)
	})

	suite.Run("success", func() {
		suite.urlRepoMock.
			On("RetrieveByShortCode", mock.Anything, "abc1234").
			Once().
			Return(&entity.URL{
				ShortCode:   "abc1234",
				OriginalURL: "https://example.com",
				URLStats:    entity.URLStats{Clicks: 4},
			}, nil)

		url, err := suite.uc.GetURLStats(context.Background(), "abc1234")

		suite.NoError(err)
		suite.Equal(int64(4), url.Clicks)
	})
}

func TestURLUseCase(t *testing.T) {
	suite.Run(t, new(URLUseCaseTestSuite))
}
