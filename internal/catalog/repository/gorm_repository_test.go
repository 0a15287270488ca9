package repository_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/suite"
	"gorm.io/gorm"

	"github.com/narwhalmedia/catalog/internal/catalog/domain"
	"github.com/narwhalmedia/catalog/internal/catalog/repository"
	"github.com/narwhalmedia/catalog/pkg/errors"
	"github.com/narwhalmedia/catalog/pkg/logger"
	"github.com/narwhalmedia/catalog/test/testutil"
)

type CatalogRepositoryTestSuite struct {
	suite.Suite
	openDB func(t *testing.T) *gorm.DB
	db     *gorm.DB
	repo   *repository.GormRepository
	ctx    context.Context
}

func (suite *CatalogRepositoryTestSuite) SetupTest() {
	suite.ctx = context.Background()
	suite.db = suite.openDB(suite.T())
	suite.repo = repository.NewGormRepository(suite.db, logger.NewNoopLogger())
}

func (suite *CatalogRepositoryTestSuite) createSeries(title string) *domain.Series {
	series := testutil.CreateTestSeries(title)
	suite.Require().NoError(suite.repo.InsertSeries(suite.ctx, series))
	return series
}

func (suite *CatalogRepositoryTestSuite) createEpisode(episode *domain.Episode) *domain.Episode {
	suite.Require().NoError(suite.repo.InsertEpisode(suite.ctx, episode))
	return episode
}

func (suite *CatalogRepositoryTestSuite) TestInsertAndGetSeries() {
	// Arrange
	series := suite.createSeries("Demo")

	// Act
	got, err := suite.repo.GetSeries(suite.ctx, series.ID)

	// Assert
	suite.Require().NoError(err)
	suite.Require().NotNil(got)
	suite.NotZero(series.ID)
	suite.False(series.CreatedAt.IsZero())
	suite.Equal("Demo", got.Title)
	suite.Equal(series.Description, got.Description)
	suite.Empty(got.ThumbnailURL)
}

func (suite *CatalogRepositoryTestSuite) TestGetSeries_MissingIsNilNotError() {
	got, err := suite.repo.GetSeries(suite.ctx, 4242)

	suite.NoError(err)
	suite.Nil(got)
}

func (suite *CatalogRepositoryTestSuite) TestListSeries_NewestFirst() {
	first := suite.createSeries("First")
	time.Sleep(5 * time.Millisecond)
	second := suite.createSeries("Second")

	items, err := suite.repo.ListSeries(suite.ctx)

	suite.Require().NoError(err)
	suite.Require().Len(items, 2)
	suite.Equal(second.ID, items[0].ID)
	suite.Equal(first.ID, items[1].ID)
}

func (suite *CatalogRepositoryTestSuite) TestUpdateSeries() {
	series := suite.createSeries("Old")
	series.Title = "New"
	series.Description = ""
	series.ThumbnailURL = "covers/series_1/poster.jpg"

	suite.Require().NoError(suite.repo.UpdateSeries(suite.ctx, series))

	got, err := suite.repo.GetSeries(suite.ctx, series.ID)
	suite.Require().NoError(err)
	suite.Equal("New", got.Title)
	suite.Empty(got.Description)
	suite.Equal("covers/series_1/poster.jpg", got.ThumbnailURL)
}

func (suite *CatalogRepositoryTestSuite) TestUpdateSeries_Missing() {
	err := suite.repo.UpdateSeries(suite.ctx, &domain.Series{ID: 999, Title: "Nope"})

	suite.Error(err)
	suite.True(errors.IsNotFound(err))
}

func (suite *CatalogRepositoryTestSuite) TestListEpisodes_Order() {
	// Arrange: numbered episodes out of order, two unnumbered, one tie
	series := suite.createSeries("Ordered")
	unnumberedA := suite.createEpisode(testutil.CreateTestDirectEpisode(series.ID, "extra A", "http://x/ea.mp4", nil))
	ep3 := suite.createEpisode(testutil.CreateTestDirectEpisode(series.ID, "three", "http://x/3.mp4", testutil.IntPtr(3)))
	ep1 := suite.createEpisode(testutil.CreateTestDirectEpisode(series.ID, "one", "http://x/1.mp4", testutil.IntPtr(1)))
	ep1b := suite.createEpisode(testutil.CreateTestDirectEpisode(series.ID, "one again", "http://x/1b.mp4", testutil.IntPtr(1)))
	unnumberedB := suite.createEpisode(testutil.CreateTestDirectEpisode(series.ID, "extra B", "http://x/eb.mp4", nil))

	other := suite.createSeries("Other")
	suite.createEpisode(testutil.CreateTestDirectEpisode(other.ID, "elsewhere", "http://x/o.mp4", testutil.IntPtr(1)))

	// Act
	items, err := suite.repo.ListEpisodes(suite.ctx, series.ID)

	// Assert
	suite.Require().NoError(err)
	ids := make([]int64, len(items))
	for i, e := range items {
		ids[i] = e.ID
	}
	suite.Equal([]int64{ep1.ID, ep1b.ID, ep3.ID, unnumberedA.ID, unnumberedB.ID}, ids)
}

func (suite *CatalogRepositoryTestSuite) TestListEpisodes_SkipsUnreadableRow() {
	series := suite.createSeries("Mixed")
	good := suite.createEpisode(testutil.CreateTestDirectEpisode(series.ID, "good", "http://x/1.mp4", nil))

	// A direct row without its URL, as an old or hand-edited database may hold.
	broken := &repository.Episode{SeriesID: series.ID, Title: "broken", SourceType: "direct", CreatedAt: time.Now()}
	suite.Require().NoError(suite.db.Create(broken).Error)

	episodes, err := suite.repo.ListEpisodes(suite.ctx, series.ID)

	suite.Require().NoError(err)
	suite.Require().Len(episodes, 1)
	suite.Equal(good.ID, episodes[0].ID)
}

func (suite *CatalogRepositoryTestSuite) TestDemoScenario() {
	series := suite.createSeries("Demo")
	a := suite.createEpisode(testutil.CreateTestDirectEpisode(series.ID, "a", "http://x/a.mp4", testutil.IntPtr(2)))
	b := suite.createEpisode(testutil.CreateTestDirectEpisode(series.ID, "b", "http://x/b.mp4", testutil.IntPtr(1)))

	items, err := suite.repo.ListEpisodes(suite.ctx, series.ID)

	suite.Require().NoError(err)
	suite.Require().Len(items, 2)
	suite.Equal(b.ID, items[0].ID)
	suite.Equal(a.ID, items[1].ID)
}

func (suite *CatalogRepositoryTestSuite) TestEpisodeSourceRoundTrip() {
	series := suite.createSeries("Sources")
	drive := suite.createEpisode(&domain.Episode{
		SeriesID: series.ID,
		Title:    "from drive",
		Source:   domain.DriveSource{DriveID: "abc", FilePath: "video_files/series_1/abc.mp4"},
	})

	got, err := suite.repo.GetEpisode(suite.ctx, drive.ID, series.ID)

	suite.Require().NoError(err)
	suite.Require().NotNil(got)
	suite.Equal(domain.DriveSource{DriveID: "abc", FilePath: "video_files/series_1/abc.mp4"}, got.Source)
	suite.Nil(got.EpisodeNumber)
}

func (suite *CatalogRepositoryTestSuite) TestInsertEpisode_RejectsInvalidSource() {
	series := suite.createSeries("Broken")

	err := suite.repo.InsertEpisode(suite.ctx, &domain.Episode{
		SeriesID: series.ID,
		Title:    "no url",
		Source:   domain.DirectSource{},
	})

	suite.Error(err)
	suite.True(errors.IsBadRequest(err))
	items, err := suite.repo.ListEpisodes(suite.ctx, series.ID)
	suite.Require().NoError(err)
	suite.Empty(items)
}

func (suite *CatalogRepositoryTestSuite) TestGetEpisode_WrongSeries() {
	series := suite.createSeries("Mine")
	other := suite.createSeries("Theirs")
	episode := suite.createEpisode(testutil.CreateTestDirectEpisode(series.ID, "one", "http://x/1.mp4", nil))

	got, err := suite.repo.GetEpisode(suite.ctx, episode.ID, other.ID)
	suite.NoError(err)
	suite.Nil(got)

	got, err = suite.repo.GetEpisodeByID(suite.ctx, episode.ID)
	suite.NoError(err)
	suite.Require().NotNil(got)
	suite.Equal(series.ID, got.SeriesID)
}

func (suite *CatalogRepositoryTestSuite) TestUpdateEpisodeThumbnail() {
	series := suite.createSeries("Thumbs")
	episode := suite.createEpisode(testutil.CreateTestDirectEpisode(series.ID, "one", "http://x/1.mp4", nil))

	suite.Require().NoError(suite.repo.UpdateEpisodeThumbnail(suite.ctx, episode.ID, "covers/episodes/ep_1/still.png"))

	got, err := suite.repo.GetEpisodeByID(suite.ctx, episode.ID)
	suite.Require().NoError(err)
	suite.Equal("covers/episodes/ep_1/still.png", got.ThumbnailURL)
}

func (suite *CatalogRepositoryTestSuite) TestDeleteSeries_CascadesToEpisodes() {
	series := suite.createSeries("Doomed")
	episode := suite.createEpisode(testutil.CreateTestDirectEpisode(series.ID, "one", "http://x/1.mp4", nil))

	suite.Require().NoError(suite.repo.DeleteSeries(suite.ctx, series.ID))

	got, err := suite.repo.GetEpisodeByID(suite.ctx, episode.ID)
	suite.NoError(err)
	suite.Nil(got)
}

func (suite *CatalogRepositoryTestSuite) TestDeleteEpisode() {
	series := suite.createSeries("Trim")
	episode := suite.createEpisode(testutil.CreateTestDirectEpisode(series.ID, "one", "http://x/1.mp4", nil))

	suite.Require().NoError(suite.repo.DeleteEpisode(suite.ctx, episode.ID))

	err := suite.repo.DeleteEpisode(suite.ctx, episode.ID)
	assert.True(suite.T(), errors.IsNotFound(err))
}

func (suite *CatalogRepositoryTestSuite) TestCountEpisodesByFilePath() {
	series := suite.createSeries("Shared")
	path := "video_files/series_1/abc.mp4"
	for _, title := range []string{"cut 1", "cut 2"} {
		suite.createEpisode(&domain.Episode{
			SeriesID: series.ID,
			Title:    title,
			Source:   domain.DriveSource{DriveID: "abc", FilePath: path},
		})
	}

	count, err := suite.repo.CountEpisodesByFilePath(suite.ctx, path)

	suite.Require().NoError(err)
	suite.Equal(int64(2), count)
}

func TestCatalogRepositorySQLite(t *testing.T) {
	suite.Run(t, &CatalogRepositoryTestSuite{openDB: testutil.NewTestDB})
}

func TestCatalogRepositoryPostgres(t *testing.T) {
	container := testutil.SetupPostgresContainer(t)
	suite.Run(t, &CatalogRepositoryTestSuite{openDB: func(t *testing.T) *gorm.DB {
		if err := container.TruncateTables("episodes", "series"); err != nil {
			t.Fatalf("failed to truncate tables: %v", err)
		}
		return container.DB
	}})
}
