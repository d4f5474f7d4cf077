// internal/app/app_test.go

package app

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"hotelac/internal/config"
	"hotelac/internal/db"
	"hotelac/internal/logger"
)

func TestMain(m *testing.M) {
	logger.SetLevel(logger.ErrorLevel)
	os.Exit(m.Run())
}

func TestApplyModeConfigsSeedsAndReloads(t *testing.T) {
	require.NoError(t, db.Init(filepath.Join(t.TempDir(), "hotel_app_test.db")))
	t.Cleanup(func() { _ = db.Close() })

	engine := config.Default().Engine
	require.NoError(t, applyModeConfigs(&engine))

	// 首次启动: 配置值播种进表, 引擎配置不变
	rows, err := db.NewACConfigRepository().GetAll()
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.InDelta(t, 28.0, engine.CoolingMaxTemp, 1e-9)
	assert.InDelta(t, 22.0, engine.HeatingDefaultTarget, 1e-9)

	// 改表再启动: 表中数据覆盖配置值
	require.NoError(t, db.DB.Model(&db.ACModeConfig{}).
		Where("mode = ?", "COOLING").
		Update("max_temp", 30.0).Error)

	engine2 := config.Default().Engine
	require.NoError(t, applyModeConfigs(&engine2))
	assert.InDelta(t, 30.0, engine2.CoolingMaxTemp, 1e-9)
	assert.InDelta(t, 18.0, engine2.CoolingMinTemp, 1e-9)
	assert.InDelta(t, 25.0, engine2.HeatingMaxTemp, 1e-9, "另一模式不受影响")
}
