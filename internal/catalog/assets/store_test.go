package assets

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	promtestutil "github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"

	"github.com/narwhalmedia/catalog/internal/metrics"
	"github.com/narwhalmedia/catalog/pkg/logger"
)

type StoreTestSuite struct {
	suite.Suite
	base    string
	store   *Store
	metrics *metrics.Metrics
}

func (suite *StoreTestSuite) SetupTest() {
	suite.base = suite.T().TempDir()
	suite.metrics = metrics.New(prometheus.NewRegistry())

	store, err := NewStore(Config{BaseDir: suite.base, VideoDir: "video_files", CoverDir: "static"},
		logger.NewNoopLogger(), suite.metrics)
	suite.Require().NoError(err)
	suite.store = store
}

func (suite *StoreTestSuite) TestNewStore_CreatesRoots() {
	suite.DirExists(filepath.Join(suite.base, "video_files"))
	suite.DirExists(filepath.Join(suite.base, "static"))
	suite.Equal(filepath.Join(suite.base, "static"), suite.store.CoverRoot())
}

func (suite *StoreTestSuite) TestDriveVideoPath() {
	got := suite.store.DriveVideoPath(7, "abc123")

	suite.Equal(filepath.Join(suite.base, "video_files", "series_7", "abc123.mp4"), got)
	rel, err := suite.store.Rel(got)
	suite.Require().NoError(err)
	suite.Equal("video_files/series_7/abc123.mp4", rel)
}

func (suite *StoreTestSuite) TestRel_RejectsOutsideBase() {
	_, err := suite.store.Rel(filepath.Dir(suite.base))

	suite.Error(err)
}

func (suite *StoreTestSuite) TestResolveVideo() {
	suite.Equal(filepath.Join(suite.base, "video_files", "series_1", "a.mp4"),
		suite.store.ResolveVideo("video_files/series_1/a.mp4"))

	abs := filepath.Join(suite.base, "elsewhere.mp4")
	suite.Equal(abs, suite.store.ResolveVideo(abs))
}

func (suite *StoreTestSuite) TestSaveVideo() {
	rel, err := suite.store.SaveVideo(3, "../Pilot.MP4", strings.NewReader("frames"))

	suite.Require().NoError(err)
	suite.True(strings.HasPrefix(rel, "video_files/series_3/Pilot_"), rel)
	suite.True(strings.HasSuffix(rel, ".mp4"), rel)

	data, err := os.ReadFile(suite.store.ResolveVideo(rel))
	suite.Require().NoError(err)
	suite.Equal("frames", string(data))
}

func (suite *StoreTestSuite) TestSaveSeriesCover_TraversalStaysInSeriesDir() {
	stored, err := suite.store.SaveSeriesCover(5, "../../etc/passwd.jpg", strings.NewReader("img"))

	suite.Require().NoError(err)
	suite.True(strings.HasPrefix(stored, "covers/series_5/passwd_"), stored)
	suite.NotContains(stored, "..")

	abs := filepath.Join(suite.base, "static", filepath.FromSlash(stored))
	suite.FileExists(abs)
	suite.Equal(filepath.Join(suite.base, "static", "covers", "series_5"), filepath.Dir(abs))
	suite.Equal("/static/"+stored, CoverURL(stored))
}

func (suite *StoreTestSuite) TestSaveEpisodeCover() {
	stored, err := suite.store.SaveEpisodeCover(9, "still", strings.NewReader("img"))

	suite.Require().NoError(err)
	suite.True(strings.HasPrefix(stored, "covers/episodes/ep_9/still_"), stored)
	suite.True(strings.HasSuffix(stored, ".jpg"), stored)
}

func (suite *StoreTestSuite) TestRemoveCover() {
	stored, err := suite.store.SaveSeriesCover(1, "poster.png", strings.NewReader("img"))
	suite.Require().NoError(err)

	result := suite.store.RemoveCover(stored)

	suite.True(result.Removed)
	suite.NoError(result.Err)
	suite.NoFileExists(filepath.Join(suite.base, "static", filepath.FromSlash(stored)))
}

func (suite *StoreTestSuite) TestRemoveCover_SkipsExternalAndMissing() {
	suite.True(suite.store.RemoveCover("https://img.example.com/a.jpg").Skipped)
	suite.True(suite.store.RemoveCover("").Skipped)
	suite.True(suite.store.RemoveCover("covers/series_1/gone.jpg").Skipped)
}

func (suite *StoreTestSuite) TestRemoveCover_RefusesEscape() {
	outside := filepath.Join(suite.base, "keep.txt")
	suite.Require().NoError(os.WriteFile(outside, []byte("x"), 0o644))

	result := suite.store.RemoveCover("../keep.txt")

	suite.Error(result.Err)
	suite.False(result.Removed)
	suite.FileExists(outside)
	suite.Equal(float64(1), promtestutil.ToFloat64(suite.metrics.CleanupFailures.WithLabelValues("cover")))
}

func (suite *StoreTestSuite) TestRemoveVideo() {
	rel, err := suite.store.SaveVideo(2, "clip.mp4", strings.NewReader("x"))
	suite.Require().NoError(err)

	suite.True(suite.store.RemoveVideo(rel).Removed)
	suite.True(suite.store.RemoveVideo(rel).Skipped)
	suite.True(suite.store.RemoveVideo("").Skipped)
}

func (suite *StoreTestSuite) TestRemoveVideo_RefusesOutsideBase() {
	result := suite.store.RemoveVideo("../../outside.mp4")

	suite.Error(result.Err)
	suite.Equal(float64(1), promtestutil.ToFloat64(suite.metrics.CleanupFailures.WithLabelValues("video")))
}

func (suite *StoreTestSuite) TestRemoveEpisodeCoverDir_OnlyWhenEmpty() {
	stored, err := suite.store.SaveEpisodeCover(4, "still.jpg", strings.NewReader("img"))
	suite.Require().NoError(err)
	dir := filepath.Join(suite.base, "static", "covers", "episodes", "ep_4")

	result := suite.store.RemoveEpisodeCoverDir(4)
	suite.True(result.Skipped)
	suite.NoError(result.Err)
	suite.DirExists(dir)

	suite.True(suite.store.RemoveCover(stored).Removed)
	suite.True(suite.store.RemoveEpisodeCoverDir(4).Removed)
	suite.NoDirExists(dir)
}

func (suite *StoreTestSuite) TestRemoveSeriesDirs() {
	cover, err := suite.store.SaveSeriesCover(6, "poster.jpg", strings.NewReader("img"))
	suite.Require().NoError(err)
	video, err := suite.store.SaveVideo(6, "clip.mp4", strings.NewReader("x"))
	suite.Require().NoError(err)
	suite.store.RemoveCover(cover)
	suite.store.RemoveVideo(video)

	results := suite.store.RemoveSeriesDirs(6)

	suite.Require().Len(results, 2)
	for _, r := range results {
		suite.True(r.Removed, r.Path)
	}
	suite.NoDirExists(suite.store.SeriesVideoDir(6))
}

func TestStoreTestSuite(t *testing.T) {
	suite.Run(t, new(StoreTestSuite))
}

func TestCoverURL(t *testing.T) {
	assert.Equal(t, "", CoverURL(""))
	assert.Equal(t, "http://x/a.jpg", CoverURL("http://x/a.jpg"))
	assert.Equal(t, "/static/covers/series_1/a.jpg", CoverURL("covers/series_1/a.jpg"))
}

func TestNewStore_AbsoluteRoots(t *testing.T) {
	base := t.TempDir()
	videos := filepath.Join(t.TempDir(), "media")

	store, err := NewStore(Config{BaseDir: base, VideoDir: videos, CoverDir: "static"}, logger.NewNoopLogger(), nil)

	require.NoError(t, err)
	assert.Equal(t, filepath.Join(videos, "series_1"), store.SeriesVideoDir(1))
}
