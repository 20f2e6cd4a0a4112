package app_setting

import (
	"log"
	"os"

	"gopkg.in/yaml.v2"
)

// AlerterAppSetting holds the tunables of the notification engine.
type AlerterAppSetting struct {
	// Mentioning a group whose member count is at or above this ceiling
	// produces no per-member notifications.
	MAX_USERS_NOTIFIED_PER_GROUP_MENTION int `yaml:"MAX_USERS_NOTIFIED_PER_GROUP_MENTION"`
	// Maximum rune length of the excerpt shipped in real-time alerts.
	EXCERPT_LENGTH int `yaml:"EXCERPT_LENGTH"`
	// Public base URL used to build post links in real-time alerts.
	BASE_URL string `yaml:"BASE_URL"`
	// Queue carrying post-saved events for the alert worker.
	POST_SAVED_QUEUE_NAME string `yaml:"POST_SAVED_QUEUE_NAME"`
}

// DefaultAlerterAppSetting returns the settings used when no config file
// is provided, e.g. in tests.
func DefaultAlerterAppSetting() AlerterAppSetting {
	return AlerterAppSetting{
		MAX_USERS_NOTIFIED_PER_GROUP_MENTION: 100,
		EXCERPT_LENGTH:                       400,
		BASE_URL:                             "http://localhost:3000",
		POST_SAVED_QUEUE_NAME:                "forum_post_saved_queue",
	}
}

func ParseAlerterAppSetting(path string) AlerterAppSetting {
	c := DefaultAlerterAppSetting()
	yamlFile, err := os.ReadFile(path)
	if err != nil {
		log.Fatal("yamlFile. get err: ", err.Error())
	}
	err = yaml.Unmarshal(yamlFile, &c)
	if err != nil {
		log.Fatal("fail to parse alerter app setting: ", err.Error())
	}
	return c
}
