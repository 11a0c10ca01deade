package config

import (
	"strings"
	"time"

	"github.com/onflow/flow-go-sdk"
	"github.com/spf13/viper"
)

const (
	AuthModeFirebase = "firebase"
	AuthModeLocal    = "local"
)

type Config struct {
	Port            string
	DbUrl           string
	LedgerRpcUrl    string
	LedgerTimeout   time.Duration
	ContractAddress flow.Address
	Network         string
	AuthMode        string

	AuthTTL            time.Duration
	MultiSigAuthTTL    time.Duration
	LedgerClose        time.Duration
	EventWindowLedgers uint32
	EventPageLimit     int
	RetryAttempts      int

	PollCommitFast time.Duration
	PollCommit     time.Duration
	PollDefault    time.Duration
	PollLobby      time.Duration

	AllowedOrigins []string

	GoogleProjectId            string
	GoogleProjectApiKey        string
	StartGameOfferTopic        string
	StartGameOfferSubscriber   string
	AccountRequestTopic        string
	AccountCreatedSubscription string

	KmsProjectId  string
	KmsLocationId string
	KmsKeyRingId  string
}

func SetDefaults() {
	viper.SetDefault("PORT", ":8080")
	viper.SetDefault("LEDGER_TIMEOUT_SECONDS", 15)
	viper.SetDefault("NETWORK_PASSPHRASE", "Test SDF Network ; September 2015")
	viper.SetDefault("AUTH_MODE", AuthModeFirebase)
	viper.SetDefault("AUTH_TTL_MINUTES", 5)
	viper.SetDefault("MULTI_SIG_AUTH_TTL_MINUTES", 60)
	viper.SetDefault("LEDGER_CLOSE_SECONDS", 5)
	viper.SetDefault("EVENT_WINDOW_LEDGERS", 7200)
	viper.SetDefault("EVENT_PAGE_LIMIT", 200)
	viper.SetDefault("TRANSPORT_RETRY_ATTEMPTS", 3)
	viper.SetDefault("POLL_COMMIT_FAST_MS", 1500)
	viper.SetDefault("POLL_COMMIT_MS", 2000)
	viper.SetDefault("POLL_DEFAULT_MS", 5000)
	viper.SetDefault("POLL_LOBBY_MS", 15000)
	viper.SetDefault("START_GAME_OFFER_TOPIC", "pokerzk.start-game.offers")
	viper.SetDefault("START_GAME_OFFER_SUBSCRIPTION", "pokerzk.start-game.offers.api")
	viper.SetDefault("ACCOUNT_REQUEST_TOPIC", "pokerzk.accounts.requested")
	viper.SetDefault("ACCOUNT_CREATED_SUBSCRIPTION", "pokerzk.accounts.created.api")
	viper.SetDefault("GOOGLE_KMS_LOCATION_ID", "global")
}

func Load() Config {
	return Config{
		Port:            viper.GetString("PORT"),
		DbUrl:           viper.GetString("DB_URL"),
		LedgerRpcUrl:    viper.GetString("LEDGER_RPC_URL"),
		LedgerTimeout:   time.Duration(viper.GetInt("LEDGER_TIMEOUT_SECONDS")) * time.Second,
		ContractAddress: flow.HexToAddress(viper.GetString("POKER_CONTRACT_ADDRESS")),
		Network:         viper.GetString("NETWORK_PASSPHRASE"),
		AuthMode:        viper.GetString("AUTH_MODE"),

		AuthTTL:            time.Duration(viper.GetInt("AUTH_TTL_MINUTES")) * time.Minute,
		MultiSigAuthTTL:    time.Duration(viper.GetInt("MULTI_SIG_AUTH_TTL_MINUTES")) * time.Minute,
		LedgerClose:        time.Duration(viper.GetInt("LEDGER_CLOSE_SECONDS")) * time.Second,
		EventWindowLedgers: viper.GetUint32("EVENT_WINDOW_LEDGERS"),
		EventPageLimit:     viper.GetInt("EVENT_PAGE_LIMIT"),
		RetryAttempts:      viper.GetInt("TRANSPORT_RETRY_ATTEMPTS"),

		PollCommitFast: time.Duration(viper.GetInt("POLL_COMMIT_FAST_MS")) * time.Millisecond,
		PollCommit:     time.Duration(viper.GetInt("POLL_COMMIT_MS")) * time.Millisecond,
		PollDefault:    time.Duration(viper.GetInt("POLL_DEFAULT_MS")) * time.Millisecond,
		PollLobby:      time.Duration(viper.GetInt("POLL_LOBBY_MS")) * time.Millisecond,

		AllowedOrigins: splitList(viper.GetString("CORS_ALLOWED_ORIGINS")),

		GoogleProjectId:            viper.GetString("GOOGLE_PROJECT_ID"),
		GoogleProjectApiKey:        viper.GetString("GOOGLE_PROJECT_API_KEY"),
		StartGameOfferTopic:        viper.GetString("START_GAME_OFFER_TOPIC"),
		StartGameOfferSubscriber:   viper.GetString("START_GAME_OFFER_SUBSCRIPTION"),
		AccountRequestTopic:        viper.GetString("ACCOUNT_REQUEST_TOPIC"),
		AccountCreatedSubscription: viper.GetString("ACCOUNT_CREATED_SUBSCRIPTION"),

		KmsProjectId:  viper.GetString("GOOGLE_KMS_PROJECT_ID"),
		KmsLocationId: viper.GetString("GOOGLE_KMS_LOCATION_ID"),
		KmsKeyRingId:  viper.GetString("GOOGLE_KMS_KEYRING_ID"),
	}
}

// LedgersFor converts a wall-clock TTL into a ledger count, rounding up.
func (c Config) LedgersFor(ttl time.Duration) uint32 {
	if c.LedgerClose <= 0 {
		return 0
	}
	return uint32((ttl + c.LedgerClose - 1) / c.LedgerClose)
}

func splitList(value string) []string {
	var items []string
	for _, item := range strings.Split(value, ",") {
		if item = strings.TrimSpace(item); item != "" {
			items = append(items, item)
		}
	}
	return items
}
