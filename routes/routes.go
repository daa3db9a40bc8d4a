// routes/routes.go
package routes

import (
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"

	"linkup/feed"
	"linkup/middlewares"
	"linkup/models"
	"linkup/monitoring"
	"linkup/utils"
)

// Services is everything the routes need, wired by main (or a test).
type Services struct {
	Users   models.UserRepository
	Regs    models.RegistrationRepository
	Likes   models.LikeRepository
	Follows models.FollowRepository
	Events  models.EventRepository
	Feed    *feed.Handler
	Metrics *monitoring.FeedMetrics // optional
	Inv     *utils.CacheInvalidator // optional
}

type deps struct{ Services }

// RegisterRoutes wires middlewares and endpoints onto the engine.
func RegisterRoutes(server *gin.Engine, svc Services, rdb *redis.Client) {
	d := &deps{svc}

	// ===== global per-IP limit (20 rps / 40 burst) =====
	globalLimiter := middlewares.NewRateLimiter(middlewares.LimiterConfig{
		RPS:     20,
		Burst:   40,
		IdleTTL: 3 * time.Minute,
	})
	server.Use(globalLimiter.Middleware(func(c *gin.Context) string {
		return "ip:" + c.ClientIP()
	}))

	// ===== stricter limit on credential endpoints =====
	authLimiter := middlewares.NewRateLimiter(middlewares.LimiterConfig{
		RPS:     0.5,
		Burst:   2,
		IdleTTL: 10 * time.Minute,
	})
	server.POST("/signup",
		authLimiter.Middleware(func(c *gin.Context) string { return "signup:" + c.ClientIP() }),
		d.signup,
	)
	server.POST("/login",
		authLimiter.Middleware(func(c *gin.Context) string { return "login:" + c.ClientIP() }),
		d.login,
	)

	// ===== protected group: authenticate, then per-user limit + daily quota =====
	auth := server.Group("/")
	auth.Use(middlewares.Authenticate) // puts userId into context

	userLimiter := middlewares.NewRateLimiter(middlewares.LimiterConfig{
		RPS:     5,
		Burst:   10,
		IdleTTL: 10 * time.Minute,
	})
	auth.Use(userLimiter.Middleware(func(c *gin.Context) string {
		return "u:" + strconv.FormatInt(c.GetInt64("userId"), 10)
	}))

	auth.Use(middlewares.Quota(rdb, middlewares.QuotaRule{
		Limit:  2000,
		Window: 24 * time.Hour,
		KeyFn: func(c *gin.Context) string {
			uid := c.GetInt64("userId")
			if uid == 0 {
				return ""
			}
			return fmt.Sprintf("quota:user:%d:day", uid)
		},
	}))

	// public endpoints: global IP limit + response cache only
	// (/events/feed is registered before /events/:id and excluded from the
	// response cache, it answers conditional GETs with its own ETag)
	server.GET("/events/feed", d.getFeed)
	server.GET("/events", d.getEvents)
	server.GET("/events/:id", d.getEvent)
	server.GET("/metrics", gin.WrapH(promhttp.Handler()))

	// authenticated endpoints
	auth.POST("/events", d.createEvent)
	auth.PUT("/events/:id", d.updateEvent)
	auth.DELETE("/events/:id", d.deleteEvent)
	auth.POST("/events/:id/register", d.registerForEvent)
	auth.DELETE("/events/:id/register", d.cancelRegistration)
	auth.POST("/events/:id/like", d.likeEvent)
	auth.DELETE("/events/:id/like", d.unlikeEvent)
	auth.POST("/users/:id/follow", d.followUser)
	auth.DELETE("/users/:id/follow", d.unfollowUser)
}

/* -------------------- Events -------------------- */

// GET /events
func (d *deps) getEvents(c *gin.Context) {
	events, err := d.Events.GetAll()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Could not fetch events. Try again later."})
		return
	}
	if events == nil {
		events = []models.Event{}
	}
	c.JSON(http.StatusOK, events)
}

// GET /events/:id
func (d *deps) getEvent(c *gin.Context) {
	id := c.Param("id")
	event, err := d.Events.GetByID(id)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Could not fetch event. Try again later."})
		return
	}
	c.JSON(http.StatusOK, event)
}

// POST /events
func (d *deps) createEvent(c *gin.Context) {
	var event models.Event
	if err := c.ShouldBindJSON(&event); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Could not parse request data."})
		return
	}

	event.OwnerID = c.GetInt64("userId")
	if event.ID == "" {
		event.ID = uuid.NewString() // shared key with the SQL counter tables
	}
	if event.CreatedAt.IsZero() {
		event.CreatedAt = time.Now().UTC()
	}

	if err := d.Events.Create(&event); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Could not create event. Try again later."})
		return
	}

	if d.Inv != nil {
		d.Inv.PurgeEventsList(c)
		d.Inv.PurgeEventItem(c, event.ID)
	}

	c.JSON(http.StatusCreated, gin.H{"message": "event created!", "event": event})
}

// PUT /events/:id
func (d *deps) updateEvent(c *gin.Context) {
	id := c.Param("id")
	userId := c.GetInt64("userId")

	old, err := d.Events.GetByID(id)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Could not fetch the event. Try again later."})
		return
	}
	if old.OwnerID != userId {
		c.JSON(http.StatusUnauthorized, gin.H{"message": "Not authorized to update event."})
		return
	}

	var incoming models.Event
	if err := c.ShouldBindJSON(&incoming); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Could not parse request data."})
		return
	}
	incoming.ID = id
	incoming.OwnerID = old.OwnerID
	incoming.CreatedAt = old.CreatedAt // creation time never moves

	if err := d.Events.Update(&incoming); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Could not update event. Try again later."})
		return
	}

	if d.Inv != nil {
		d.Inv.PurgeEventsList(c)
		d.Inv.PurgeEventItem(c, incoming.ID)
	}

	c.JSON(http.StatusOK, gin.H{"message": "Event updated successfully!"})
}

// DELETE /events/:id
func (d *deps) deleteEvent(c *gin.Context) {
	id := c.Param("id")
	userId := c.GetInt64("userId")

	ev, err := d.Events.GetByID(id)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Could not fetch the event. Try again later."})
		return
	}
	if ev.OwnerID != userId {
		c.JSON(http.StatusUnauthorized, gin.H{"message": "Not authorized to delete event."})
		return
	}

	if err := d.Events.Delete(id); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Could not delete the event."})
		return
	}

	if d.Inv != nil {
		d.Inv.PurgeEventsList(c)
		d.Inv.PurgeEventItem(c, id)
	}

	c.JSON(http.StatusOK, gin.H{"message": "Event deleted successfully!"})
}

/* --------------- Registrations ------------------ */

// POST /events/:id/register
func (d *deps) registerForEvent(c *gin.Context) {
	userId := c.GetInt64("userId")
	eventId := c.Param("id")

	if _, err := d.Events.GetByID(eventId); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Could not fetch event."})
		return
	}

	if err := d.Regs.Register(userId, eventId); err != nil {
		c.JSON(http.StatusConflict, gin.H{"message": "Already registered or failed."})
		return
	}

	// registration counts feed engagement, so the list cache goes too
	if d.Inv != nil {
		d.Inv.PurgeEventsList(c)
	}

	c.JSON(http.StatusCreated, gin.H{"message": "Registered!"})
}

// DELETE /events/:id/register
func (d *deps) cancelRegistration(c *gin.Context) {
	userId := c.GetInt64("userId")
	eventId := c.Param("id")

	if err := d.Regs.Cancel(userId, eventId); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Could not cancel registration."})
		return
	}

	if d.Inv != nil {
		d.Inv.PurgeEventsList(c)
	}

	c.JSON(http.StatusOK, gin.H{"message": "Cancelled!"})
}

/* -------------------- Likes --------------------- */

// POST /events/:id/like
func (d *deps) likeEvent(c *gin.Context) {
	userId := c.GetInt64("userId")
	eventId := c.Param("id")

	if _, err := d.Events.GetByID(eventId); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Could not fetch event."})
		return
	}

	if err := d.Likes.Like(userId, eventId); err != nil {
		c.JSON(http.StatusConflict, gin.H{"message": "Already liked or failed."})
		return
	}

	if d.Inv != nil {
		d.Inv.PurgeEventsList(c)
	}

	c.JSON(http.StatusCreated, gin.H{"message": "Liked!"})
}

// DELETE /events/:id/like
func (d *deps) unlikeEvent(c *gin.Context) {
	userId := c.GetInt64("userId")
	eventId := c.Param("id")

	if err := d.Likes.Unlike(userId, eventId); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Could not remove like."})
		return
	}

	if d.Inv != nil {
		d.Inv.PurgeEventsList(c)
	}

	c.JSON(http.StatusOK, gin.H{"message": "Unliked!"})
}

/* ------------------- Follows -------------------- */

// POST /users/:id/follow
func (d *deps) followUser(c *gin.Context) {
	followerId := c.GetInt64("userId")
	followeeId, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Could not parse user id."})
		return
	}
	if followeeId == followerId {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Cannot follow yourself."})
		return
	}

	if _, err := d.Users.GetByID(followeeId); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Could not fetch user."})
		return
	}

	if err := d.Follows.Follow(followerId, followeeId); err != nil {
		c.JSON(http.StatusConflict, gin.H{"message": "Already following or failed."})
		return
	}

	c.JSON(http.StatusCreated, gin.H{"message": "Followed!"})
}

// DELETE /users/:id/follow
func (d *deps) unfollowUser(c *gin.Context) {
	followerId := c.GetInt64("userId")
	followeeId, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Could not parse user id."})
		return
	}

	if err := d.Follows.Unfollow(followerId, followeeId); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Could not unfollow."})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Unfollowed!"})
}

/* --------------------- Auth --------------------- */

// POST /signup
func (d *deps) signup(c *gin.Context) {
	var req struct {
		Email    string `json:"email" binding:"required"`
		Password string `json:"password" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Could not parse request data."})
		return
	}

	u := models.User{Email: req.Email, Password: req.Password}
	if err := d.Users.Create(&u); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Could not save user."})
		return
	}
	c.JSON(http.StatusCreated, gin.H{"message": "user created successfully"})
}

// POST /login
func (d *deps) login(c *gin.Context) {
	var req struct {
		Email    string `json:"email" binding:"required"`
		Password string `json:"password" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Could not parse request data."})
		return
	}

	user, err := d.Users.ValidateCredentials(req.Email, req.Password)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"message": "Could not authenticate user."})
		return
	}

	token, err := utils.GenerateToken(user.Email, user.ID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Could not authenticate user."})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Login successful!", "token": token})
}
