package alerter

import (
	"encoding/json"

	"github.com/pkg/errors"
	"gorm.io/gorm"

	"github.com/forumjet/alertmux/model"
	"github.com/forumjet/alertmux/utils"
	. "github.com/forumjet/alertmux/utils/log"
)

// PostSavedMessage is the queue event emitted by the forum application
// after a post is committed.
type PostSavedMessage struct {
	PostId    string `json:"post_id"`
	NewRecord bool   `json:"new_record"`
}

// PostSavedMessageProcessor consumes post-saved events and runs the
// alert pipeline for each. Reader owns how to fetch messages from the
// queue, the processor owns how to interpret them.
type PostSavedMessageProcessor struct {
	Reader  utils.MessageQueueReader
	DB      *gorm.DB
	Alerter *Alerter
}

// Create new processor with reader dependency injection
func NewPostSavedMessageProcessor(reader utils.MessageQueueReader, db *gorm.DB, alerter *Alerter) *PostSavedMessageProcessor {
	return &PostSavedMessageProcessor{
		Reader:  reader,
		DB:      db,
		Alerter: alerter,
	}
}

// ReadAndProcessMessages reads up to batchSize messages and processes
// them in order. This function doesn't return errors, only logs them: a
// post whose alerts fail is retriable because every creation step is
// dedup-checked.
func (processor *PostSavedMessageProcessor) ReadAndProcessMessages(batchSize int64) int {
	msgs, err := processor.Reader.ReceiveMessages(batchSize)

	successCount := 0
	if err != nil {
		Log.Error("fail to read post-saved messages from queue : ", err)
		return successCount
	}

	for _, msg := range msgs {
		if err := processor.ProcessOnePostSavedMessage(msg); err != nil {
			Log.Errorf("fail to process one post-saved message. err: %s", err)
		} else {
			successCount++
		}
		if processor.Reader.DeleteMessage(msg) != nil {
			Log.Error("fail to delete message from queue")
		}
	}
	return successCount
}

// ProcessOnePostSavedMessage decodes one event, loads the post with its
// associations and runs the alert pipeline. A post that disappeared
// before processing is an error for the caller to log, not a crash.
func (processor *PostSavedMessageProcessor) ProcessOnePostSavedMessage(msg *utils.MessageQueueMessage) error {
	decoded, err := processor.decodePostSavedMessage(msg)
	if err != nil {
		return err
	}

	var post model.Post
	err = processor.DB.
		Preload("Topic").
		Preload("User").
		Where("id = ?", decoded.PostId).
		First(&post).Error
	if err != nil {
		return errors.Wrapf(err, "post %s not found", decoded.PostId)
	}

	processor.Alerter.AfterSavePost(&post, decoded.NewRecord)
	return nil
}

func (processor *PostSavedMessageProcessor) decodePostSavedMessage(msg *utils.MessageQueueMessage) (*PostSavedMessage, error) {
	str, err := msg.Read()
	if err != nil {
		return nil, err
	}

	decoded := &PostSavedMessage{}
	if err := json.Unmarshal([]byte(str), decoded); err != nil {
		return nil, errors.Wrap(err, "malformed post-saved message")
	}
	if decoded.PostId == "" {
		return nil, errors.New("post-saved message missing post_id")
	}
	return decoded, nil
}
