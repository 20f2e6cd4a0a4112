package server

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/forumjet/alertmux/model"
	"github.com/forumjet/alertmux/utils"
	. "github.com/forumjet/alertmux/utils/log"
)

const defaultPageSize = 30

// actingUserId reads the authenticated user id injected by the auth
// middleware into the "sub" header.
func actingUserId(c *gin.Context) (string, bool) {
	sub := c.Request.Header.Get("sub")
	if sub == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"msg": "not authenticated"})
		return "", false
	}
	return sub, true
}

// ListNotificationsHandler returns the user's notifications, newest
// first, paged with ?page and ?limit.
func ListNotificationsHandler(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		userId, ok := actingUserId(c)
		if !ok {
			return
		}

		page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
		if page < 1 {
			page = 1
		}
		limit, _ := strconv.Atoi(c.DefaultQuery("limit", strconv.Itoa(defaultPageSize)))
		if limit < 1 || limit > 100 {
			limit = defaultPageSize
		}

		var notifications []model.Notification
		err := db.Where("user_id = ?", userId).
			Order("created_at DESC").
			Offset((page - 1) * limit).
			Limit(limit).
			Find(&notifications).Error
		if err != nil {
			Log.Error("fail to list notifications for user ", userId, " : ", err)
			c.JSON(http.StatusInternalServerError, gin.H{"msg": "internal error"})
			return
		}

		c.JSON(http.StatusOK, gin.H{"notifications": notifications})
	}
}

// UnreadCountHandler returns the user's unread notification count. The
// count is served from the redis cache when present and recomputed from
// the DB on a miss.
func UnreadCountHandler(db *gorm.DB, cache *utils.RedisClient) gin.HandlerFunc {
	return func(c *gin.Context) {
		userId, ok := actingUserId(c)
		if !ok {
			return
		}

		if cache != nil {
			if count, hit, err := cache.GetCachedUnreadNotificationCount(userId); err == nil && hit {
				c.JSON(http.StatusOK, gin.H{"unread_count": count})
				return
			}
		}

		var count int64
		err := db.Model(&model.Notification{}).
			Where("user_id = ? AND read = ?", userId, false).
			Count(&count).Error
		if err != nil {
			Log.Error("fail to count unread notifications for user ", userId, " : ", err)
			c.JSON(http.StatusInternalServerError, gin.H{"msg": "internal error"})
			return
		}

		if cache != nil {
			if err := cache.SetCachedUnreadNotificationCount(userId, int(count)); err != nil {
				Log.Warn("fail to fill unread count cache for user ", userId, " : ", err)
			}
		}

		c.JSON(http.StatusOK, gin.H{"unread_count": count})
	}
}

// MarkReadHandler marks one of the user's notifications as read and
// invalidates the cached unread count.
func MarkReadHandler(db *gorm.DB, cache *utils.RedisClient) gin.HandlerFunc {
	return func(c *gin.Context) {
		userId, ok := actingUserId(c)
		if !ok {
			return
		}

		res := db.Model(&model.Notification{}).
			Where("id = ? AND user_id = ?", c.Param("id"), userId).
			Update("read", true)
		if res.Error != nil {
			Log.Error("fail to mark notification read for user ", userId, " : ", res.Error)
			c.JSON(http.StatusInternalServerError, gin.H{"msg": "internal error"})
			return
		}
		if res.RowsAffected == 0 {
			c.JSON(http.StatusNotFound, gin.H{"msg": "notification not found"})
			return
		}

		invalidateUnreadCount(cache, userId)
		c.JSON(http.StatusOK, gin.H{"msg": "ok"})
	}
}

// MarkAllReadHandler marks all of the user's notifications as read and
// invalidates the cached unread count.
func MarkAllReadHandler(db *gorm.DB, cache *utils.RedisClient) gin.HandlerFunc {
	return func(c *gin.Context) {
		userId, ok := actingUserId(c)
		if !ok {
			return
		}

		err := db.Model(&model.Notification{}).
			Where("user_id = ? AND read = ?", userId, false).
			Update("read", true).Error
		if err != nil {
			Log.Error("fail to mark notifications read for user ", userId, " : ", err)
			c.JSON(http.StatusInternalServerError, gin.H{"msg": "internal error"})
			return
		}

		invalidateUnreadCount(cache, userId)
		c.JSON(http.StatusOK, gin.H{"msg": "ok"})
	}
}

func invalidateUnreadCount(cache *utils.RedisClient, userId string) {
	if cache == nil {
		return
	}
	if err := cache.InvalidateUnreadNotificationCount(userId); err != nil {
		Log.Warn("fail to invalidate unread count cache for user ", userId, " : ", err)
	}
}
