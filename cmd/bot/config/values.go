package config

const (
	// AppName is the name of the application.
	AppName = "ticketeer"

	// EnvBotToken is the environment variable for the bot token.
	EnvBotToken = `BOT_TOKEN`

	// EnvDiscordBotToken is the alternative environment variable for the bot token.
	EnvDiscordBotToken = `DISCORD_BOT_TOKEN`

	// EnvApplicationId is the environment variable for the application ID.
	EnvApplicationId = `APPLICATION_ID`

	// EnvPort is the environment variable for the HTTP port.
	EnvPort = `PORT`

	// EnvMonitoringPort is the environment variable for the monitoring port. It is used when PORT is not set.
	EnvMonitoringPort = `MONITORING_PORT`

	// EnvDataDir is the environment variable for the JSON document directory.
	EnvDataDir = `DATA_DIR`

	// EnvTranscriptDir is the environment variable for the transcript directory.
	EnvTranscriptDir = `TRANSCRIPT_DIR`

	// EnvMongoUri is the environment variable for the MongoDB URI.
	EnvMongoUri = `MONGO_URI`

	// EnvMongoDatabase is the environment variable for the MongoDB database name.
	EnvMongoDatabase = `MONGO_DATABASE`

	// EnvAmqpUrl is the environment variable for the event broker URL.
	EnvAmqpUrl = `AMQP_URL`

	// EnvAmqpExchange is the environment variable for the event exchange.
	EnvAmqpExchange = `AMQP_EXCHANGE`

	// EnvLanguage is the environment variable for the message language.
	EnvLanguage = `LANGUAGE`

	// EnvConfigFile is the environment variable for the optional YAML configuration file.
	EnvConfigFile = `CONFIG_FILE`
)

const (
	DefaultPort          = "8080"
	DefaultDataDir       = "data"
	DefaultTranscriptDir = "transcripts"
	DefaultLanguage      = "en"
)

// Values is the process configuration.
type Values struct {
	// BotToken is the token for the bot.
	BotToken string `yaml:"bot_token"`

	// ApplicationId is the ID of the application. The session user ID is used when empty.
	ApplicationId string `yaml:"application_id"`

	// Port is the port for the HTTP server.
	Port string `yaml:"port"`

	// DataDir holds the JSON documents when MongoDB is not configured.
	DataDir string `yaml:"data_dir"`

	// TranscriptDir holds the ticket transcripts.
	TranscriptDir string `yaml:"transcript_dir"`

	// MongoUri is the URI for the MongoDB database. The JSON files are used when empty.
	MongoUri string `yaml:"mongo_uri"`

	// MongoDatabase is the MongoDB database name.
	MongoDatabase string `yaml:"mongo_database"`

	// AmqpUrl is the URL of the event broker. Events are dropped when empty.
	AmqpUrl string `yaml:"amqp_url"`

	// AmqpExchange is the exchange ticket events are published to.
	AmqpExchange string `yaml:"amqp_exchange"`

	// Language is the language of the bot messages.
	Language string `yaml:"language"`
}
