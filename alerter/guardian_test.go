package alerter

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/forumjet/alertmux/model"
	"github.com/forumjet/alertmux/utils"
)

func TestGuardianRegularTopicIsPublic(t *testing.T) {
	db, _ := utils.CreateTempDB(t)
	guardian := NewGuardian(db)

	user := createTestUser(t, db, "bob")
	topic := createTestTopic(t, db, "public topic")

	assert.True(t, guardian.CanSeeTopic(user, topic))
	assert.True(t, guardian.CanSeeTopic(nil, topic))
}

func TestGuardianDeletedTopicStaffOnly(t *testing.T) {
	db, _ := utils.CreateTempDB(t)
	guardian := NewGuardian(db)

	user := createTestUser(t, db, "bob")
	staff := createTestStaffUser(t, db, "mod")

	topic := createTestTopic(t, db, "gone topic")
	topic.DeletedAt = gorm.DeletedAt{Time: time.Now(), Valid: true}

	assert.False(t, guardian.CanSeeTopic(user, topic))
	assert.True(t, guardian.CanSeeTopic(staff, topic))
}

func TestGuardianPrivateMessageAudience(t *testing.T) {
	db, _ := utils.CreateTempDB(t)
	guardian := NewGuardian(db)

	direct := createTestUser(t, db, "alice")
	viaGroup := createTestUser(t, db, "bob")
	outsider := createTestUser(t, db, "carol")
	staff := createTestStaffUser(t, db, "mod")
	group := createTestGroup(t, db, "support", viaGroup)

	topic := createTestPrivateMessage(t, db, "secret", []*model.User{direct}, []*model.Group{group})

	assert.True(t, guardian.CanSeeTopic(direct, topic))
	assert.True(t, guardian.CanSeeTopic(viaGroup, topic))
	assert.False(t, guardian.CanSeeTopic(outsider, topic))
	assert.False(t, guardian.CanSeeTopic(nil, topic))
	assert.True(t, guardian.CanSeeTopic(staff, topic))
}

func TestGuardianDeletedPostInvisibleToNonStaff(t *testing.T) {
	db, _ := utils.CreateTempDB(t)
	guardian := NewGuardian(db)

	author := createTestUser(t, db, "alice")
	user := createTestUser(t, db, "bob")
	staff := createTestStaffUser(t, db, "mod")

	topic := createTestTopic(t, db, "a topic")
	post := createTestPost(t, db, topic, author, 1)
	require.NoError(t, db.Delete(post).Error)
	post.DeletedAt = gorm.DeletedAt{Time: time.Now(), Valid: true}

	assert.False(t, guardian.CanSeePost(user, post))
	assert.True(t, guardian.CanSeePost(staff, post))
}

func TestGuardianLoadsTopicWhenNotPreloaded(t *testing.T) {
	db, _ := utils.CreateTempDB(t)
	guardian := NewGuardian(db)

	author := createTestUser(t, db, "alice")
	outsider := createTestUser(t, db, "carol")

	topic := createTestPrivateMessage(t, db, "secret", []*model.User{author}, nil)
	post := createTestPost(t, db, topic, author, 1)
	post.Topic = model.Topic{}

	assert.True(t, guardian.CanSeePost(author, post))
	assert.False(t, guardian.CanSeePost(outsider, post))
}
