package services

import (
	"fmt"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	redis_store "github.com/eko/gocache/store/redis/v4"
	embeddedpostgres "github.com/fergusstrange/embedded-postgres"
	"github.com/nexocrm/messaging/pkg/internal/cache"
	"github.com/nexocrm/messaging/pkg/internal/database"
	"github.com/nexocrm/messaging/pkg/internal/models"
	"github.com/redis/go-redis/v9"
	"github.com/spf13/viper"
	"github.com/stretchr/testify/require"
)

const testPgPort = 55432

func TestMain(m *testing.M) {
	mr, err := miniredis.Run()
	if err != nil {
		fmt.Fprintf(os.Stderr, "unable to start miniredis: %v\n", err)
		os.Exit(1)
	}
	cache.R = redis.NewClient(&redis.Options{Addr: mr.Addr()})
	cache.S = redis_store.NewRedis(cache.R)

	epg := embeddedpostgres.NewDatabase(embeddedpostgres.DefaultConfig().
		Port(testPgPort).
		Username("postgres").
		Password("postgres").
		Database("messaging_test").
		RuntimePath(filepath.Join(os.TempDir(), "messaging-epg")))
	if err := epg.Start(); err != nil {
		fmt.Fprintf(os.Stderr, "unable to start embedded postgres: %v\n", err)
		os.Exit(1)
	}

	viper.Set("database.dsn", fmt.Sprintf(
		"host=127.0.0.1 port=%d user=postgres password=postgres dbname=messaging_test sslmode=disable", testPgPort))
	viper.Set("database.prefix", "")

	code := 1
	if err := database.NewSource(); err != nil {
		fmt.Fprintf(os.Stderr, "unable to connect: %v\n", err)
	} else if err := database.RunMigration(database.C); err != nil {
		fmt.Fprintf(os.Stderr, "unable to migrate: %v\n", err)
	} else if err := EnsureGlobalChannel(); err != nil {
		fmt.Fprintf(os.Stderr, "unable to provision the global channel: %v\n", err)
	} else {
		code = m.Run()
	}

	_ = epg.Stop()
	mr.Close()
	os.Exit(code)
}

var accountSeq int

func newTestAccount(t *testing.T, role models.AccountRole) models.Account {
	t.Helper()
	accountSeq++
	account := models.Account{
		Name: fmt.Sprintf("user-%d-%d", accountSeq, time.Now().UnixNano()),
		Nick: fmt.Sprintf("User %d", accountSeq),
		Role: role,
	}
	require.NoError(t, database.C.Create(&account).Error)
	return account
}

func newTestTeamChannel(t *testing.T, creator models.Account, members ...models.Account) models.Channel {
	t.Helper()
	channel, err := NewTeamChannel(creator, fmt.Sprintf("team-%d", time.Now().UnixNano()))
	require.NoError(t, err)
	for _, member := range members {
		require.NoError(t, AddChannelMember(member, channel))
	}
	return channel
}

func seedMessage(t *testing.T, channel models.Channel, sender models.Account, content string, at time.Time) models.Message {
	t.Helper()
	message := models.Message{
		BaseModel: models.BaseModel{CreatedAt: at},
		Content:   content,
		ChannelID: channel.ID,
		SenderID:  &sender.ID,
	}
	require.NoError(t, database.C.Create(&message).Error)
	return message
}
