package main

import (
	"time"

	"github.com/forumjet/alertmux/alerter"
	"github.com/forumjet/alertmux/app_setting"
	"github.com/forumjet/alertmux/realtime"
	. "github.com/forumjet/alertmux/utils"
	"github.com/forumjet/alertmux/utils/dotenv"
	"github.com/forumjet/alertmux/utils/flag"
	. "github.com/forumjet/alertmux/utils/log"
)

const (
	appSettingPath          = "alerter_app_setting.yaml"
	messageReadTimeout      = 20
	messageProcessBatchSize = 10
)

func main() {
	flag.Parse()

	if err := dotenv.LoadDotEnvs(); err != nil {
		Log.Fatal("fail to load env : ", err)
	}

	StartTracer()
	StartProfiler()
	defer CloseTracer()
	defer CloseProfiler()

	setting := app_setting.ParseAlerterAppSetting(appSettingPath)

	db, err := GetDBConnection()
	if err != nil {
		Log.Fatal("fail to connect database : ", err)
	}
	DatabaseSetupAndMigration(db)

	reader, err := NewSQSMessageQueueReader(setting.POST_SAVED_QUEUE_NAME, messageReadTimeout)
	if err != nil {
		Log.Fatal("fail to initialize message queue reader : ", err)
	}

	engine := alerter.NewAlerter(
		db,
		alerter.NewGuardian(db),
		realtime.NewRedisPublisher(),
		GetRedisClient(),
		setting,
	)

	// Main alert logic lives in the processor
	processor := alerter.NewPostSavedMessageProcessor(reader, db, engine)

	Log.Info("alert worker starts up")
	for {
		processor.ReadAndProcessMessages(messageProcessBatchSize)

		// Protective delay
		time.Sleep(2 * time.Second)
	}
}
