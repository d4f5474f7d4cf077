// internal/db/db_test.go

package db

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"hotelac/internal/logger"
	"hotelac/internal/types"
)

func TestMain(m *testing.M) {
	logger.SetLevel(logger.ErrorLevel)
	os.Exit(m.Run())
}

func setupDB(t *testing.T) {
	t.Helper()
	require.NoError(t, Init(filepath.Join(t.TempDir(), "hotel_db_test.db")))
	t.Cleanup(func() { _ = Close() })
}

func TestEnsureRoomsSeedsDefaults(t *testing.T) {
	setupDB(t)
	require.NoError(t, EnsureRooms(5, 25, 25))

	rooms, err := NewRoomRepository().GetAllRooms()
	require.NoError(t, err)
	require.Len(t, rooms, 5)

	wantRates := []float64{100, 125, 150, 200, 100}
	for i, room := range rooms {
		assert.Equal(t, i+1, room.RoomID)
		assert.Equal(t, types.RoomAvailable, room.Status)
		assert.Equal(t, types.ModeCooling, room.ACMode)
		assert.Equal(t, types.SpeedLow, room.FanSpeed)
		assert.InDelta(t, 32.0, room.CurrentTemp, 1e-9, "初始室温高于缺省温度 7 度")
		assert.InDelta(t, 25.0, room.TargetTemp, 1e-9)
		assert.InDelta(t, 25.0, room.DefaultTemp, 1e-9)
		assert.InDelta(t, wantRates[i], room.DailyRate, 1e-9)
		assert.False(t, room.ACOn)
		assert.Nil(t, room.ServingStart)
		assert.Nil(t, room.LastTempUpdate)
	}
}

func TestEnsureRoomsIdempotent(t *testing.T) {
	setupDB(t)
	require.NoError(t, EnsureRooms(3, 25, 25))

	// 已有房间不动, 缺的补齐
	require.NoError(t, NewRoomRepository().CheckIn(2, 7, "张三", time.Now(), 0))
	require.NoError(t, EnsureRooms(5, 25, 25))

	rooms, err := NewRoomRepository().GetAllRooms()
	require.NoError(t, err)
	require.Len(t, rooms, 5)
	assert.Equal(t, types.RoomOccupied, rooms[1].Status, "重复初始化不覆盖已有房间")
}

func TestSeedBaseDataIdempotent(t *testing.T) {
	setupDB(t)
	SeedBaseData()
	SeedBaseData()

	var count int64
	require.NoError(t, DB.Model(&User{}).Count(&count).Error)
	assert.EqualValues(t, 3, count)

	user, err := NewUserRepository().GetUserByUsername("admin")
	require.NoError(t, err)
	assert.Equal(t, "admin123", user.Password)
	assert.Equal(t, "administrator", user.Identity)

	_, err = NewUserRepository().GetUserByUsername("nobody")
	assert.Error(t, err)
}

func TestACModeConfigSeedOnlyWhenEmpty(t *testing.T) {
	setupDB(t)
	repo := NewACConfigRepository()

	require.NoError(t, repo.Seed([]ACModeConfig{
		{Mode: "COOLING", MinTemp: 18, MaxTemp: 28, DefaultTarget: 25},
		{Mode: "HEATING", MinTemp: 18, MaxTemp: 25, DefaultTarget: 22},
	}))
	rows, err := repo.GetAll()
	require.NoError(t, err)
	require.Len(t, rows, 2)

	// 表非空时播种是空操作
	require.NoError(t, repo.Seed([]ACModeConfig{
		{Mode: "COOLING", MinTemp: 10, MaxTemp: 40, DefaultTarget: 20},
	}))
	rows, err = repo.GetAll()
	require.NoError(t, err)
	require.Len(t, rows, 2)
	for _, row := range rows {
		if row.Mode == "COOLING" {
			assert.InDelta(t, 28.0, row.MaxTemp, 1e-9, "已有配置不被覆盖")
		}
	}
}
