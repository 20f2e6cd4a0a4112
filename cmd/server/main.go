package main

import (
	"net/http"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	gintrace "gopkg.in/DataDog/dd-trace-go.v1/contrib/gin-gonic/gin"

	"github.com/forumjet/alertmux/server"
	"github.com/forumjet/alertmux/server/middlewares"
	. "github.com/forumjet/alertmux/utils"
	"github.com/forumjet/alertmux/utils/dotenv"
	"github.com/forumjet/alertmux/utils/flag"
	. "github.com/forumjet/alertmux/utils/log"
)

func cleanup() {
	CloseProfiler()
	CloseTracer()
	Log.Info("api server shutdown")
}

func main() {
	flag.Parse()
	defer cleanup()

	if err := dotenv.LoadDotEnvs(); err != nil {
		panic(err)
	}

	StartTracer()
	StartProfiler()
	middlewares.Setup()

	db, err := GetDBConnection()
	if err != nil {
		Log.Fatal("fail to connect database : ", err)
	}
	cache := GetRedisClient()

	// Default With the Logger and Recovery middleware already attached
	router := gin.Default()

	router.Use(cors.Default())
	router.Use(gintrace.Middleware(flag.ServiceName))
	router.Use(middlewares.JWT())

	router.GET("/api/notifications", server.ListNotificationsHandler(db))
	router.GET("/api/notifications/unread_count", server.UnreadCountHandler(db, cache))
	router.PUT("/api/notifications/:id/read", server.MarkReadHandler(db, cache))
	router.POST("/api/notifications/read", server.MarkAllReadHandler(db, cache))

	router.GET("/ping", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"message": "pong",
		})
	})

	Log.Info("api server starts up")
	router.Run(":8080")
}
