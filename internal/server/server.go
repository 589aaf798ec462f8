package server

import (
	"context"
	"net/http"
	"time"

	"github.com/coursehive/coursehive/internal/auth"
	authdomain "github.com/coursehive/coursehive/internal/auth/domain"
	"github.com/coursehive/coursehive/internal/cart"
	cartdomain "github.com/coursehive/coursehive/internal/cart/domain"
	"github.com/coursehive/coursehive/internal/channel"
	channeldomain "github.com/coursehive/coursehive/internal/channel/domain"
	"github.com/coursehive/coursehive/internal/clock"
	"github.com/coursehive/coursehive/internal/config"
	"github.com/coursehive/coursehive/internal/lock"
	"github.com/coursehive/coursehive/internal/member"
	memberdomain "github.com/coursehive/coursehive/internal/member/domain"
	"github.com/coursehive/coursehive/internal/order"
	orderdomain "github.com/coursehive/coursehive/internal/order/domain"
	"github.com/coursehive/coursehive/internal/providers"
	"github.com/coursehive/coursehive/internal/providers/storage"
	"github.com/coursehive/coursehive/internal/ratelimit"
	"github.com/coursehive/coursehive/internal/reply"
	replydomain "github.com/coursehive/coursehive/internal/reply/domain"
	"github.com/coursehive/coursehive/internal/reward"
	rewarddomain "github.com/coursehive/coursehive/internal/reward/domain"
	"github.com/coursehive/coursehive/internal/subscription"
	subscriptiondomain "github.com/coursehive/coursehive/internal/subscription/domain"
	"github.com/coursehive/coursehive/internal/video"
	videodomain "github.com/coursehive/coursehive/internal/video/domain"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

var Module = fx.Module("http.server",
	fx.Provide(registerGin),
	providers.Module,
	lock.Module,
	ratelimit.Module,
	member.Module,
	channel.Module,
	video.Module,
	reward.Module,
	order.Module,
	cart.Module,
	subscription.Module,
	reply.Module,
	auth.Module,
	fx.Invoke(NewServer),
	fx.Invoke(run),
)

func NewEngine(log *zap.Logger) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(requestLogger(log))
	r.Use(ErrorHandlingMiddleware())

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	return r
}

func registerGin(log *zap.Logger) *gin.Engine {
	return NewEngine(log)
}

func requestLogger(log *zap.Logger) gin.HandlerFunc {
	log = log.Named("http")
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		log.Debug("request",
			zap.String("method", c.Request.Method),
			zap.String("path", c.FullPath()),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("took", time.Since(start)),
		)
	}
}

func run(lc fx.Lifecycle, cfg config.Config, r *gin.Engine) {
	srv := &http.Server{
		Addr:    cfg.HTTPAddr,
		Handler: r,
	}

	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			go func() {
				if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
					panic(err)
				}
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			shutdownCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
			defer cancel()
			return srv.Shutdown(shutdownCtx)
		},
	})
}

type Server struct {
	engine          *gin.Engine
	cfg             config.Config
	clock           clock.Clock
	authSvc         authdomain.Service
	memberSvc       memberdomain.Service
	channelSvc      channeldomain.Service
	videoSvc        videodomain.Service
	rewardSvc       rewarddomain.Service
	orderSvc        orderdomain.Service
	cartSvc         cartdomain.Service
	subscriptionSvc subscriptiondomain.Service
	replySvc        replydomain.Service
	signer          *storage.Signer
	locker          *lock.Locker
	limiter         *ratelimit.TokenBucket
}

type ServerParams struct {
	fx.In

	Gin             *gin.Engine
	Cfg             config.Config
	Clock           clock.Clock
	AuthSvc         authdomain.Service
	MemberSvc       memberdomain.Service
	ChannelSvc      channeldomain.Service
	VideoSvc        videodomain.Service
	RewardSvc       rewarddomain.Service
	OrderSvc        orderdomain.Service
	CartSvc         cartdomain.Service
	SubscriptionSvc subscriptiondomain.Service
	ReplySvc        replydomain.Service
	Signer          *storage.Signer
	Locker          *lock.Locker           `optional:"true"`
	Limiter         *ratelimit.TokenBucket `optional:"true"`
}

func NewServer(p ServerParams) *Server {
	s := &Server{
		engine:          p.Gin,
		cfg:             p.Cfg,
		clock:           p.Clock,
		authSvc:         p.AuthSvc,
		memberSvc:       p.MemberSvc,
		channelSvc:      p.ChannelSvc,
		videoSvc:        p.VideoSvc,
		rewardSvc:       p.RewardSvc,
		orderSvc:        p.OrderSvc,
		cartSvc:         p.CartSvc,
		subscriptionSvc: p.SubscriptionSvc,
		replySvc:        p.ReplySvc,
		signer:          p.Signer,
		locker:          p.Locker,
		limiter:         p.Limiter,
	}

	s.registerAuthRoutes()
	s.registerAPIRoutes()

	return s
}

func (s *Server) Engine() *gin.Engine {
	return s.engine
}

func (s *Server) registerAuthRoutes() {
	authGroup := s.engine.Group("/auth")

	authGroup.POST("/verification", s.RateLimited("verification"), s.RequestVerification)
	authGroup.POST("/verification/confirm", s.RateLimited("verification"), s.ConfirmVerification)
	authGroup.POST("/signup", s.Signup)
	authGroup.POST("/login", s.RateLimited("login"), s.Login)
	authGroup.POST("/logout", s.AuthRequired(), s.Logout)
	authGroup.GET("/me", s.AuthRequired(), s.Me)
}

func (s *Server) registerAPIRoutes() {
	api := s.engine.Group("/api")

	// -------- Channels --------
	api.GET("/channels/:id", s.GetChannel)
	api.GET("/channels/:id/videos", s.ListChannelVideos)
	api.GET("/me/channel", s.AuthRequired(), s.GetMyChannel)
	api.PATCH("/me/channel", s.AuthRequired(), s.UpdateMyChannel)

	// -------- Members --------
	api.PATCH("/me/profile", s.AuthRequired(), s.UpdateProfile)
	api.GET("/me/rewards", s.AuthRequired(), s.ListMyRewards)
	api.GET("/me/orders", s.AuthRequired(), s.ListMyOrders)
	api.GET("/me/cart", s.AuthRequired(), s.ListCart)
	api.GET("/me/subscriptions", s.AuthRequired(), s.ListSubscriptions)

	// -------- Videos --------
	api.POST("/videos", s.AuthRequired(), s.CreateVideoUpload)
	api.GET("/videos/:id", s.GetVideo)
	api.POST("/videos/:id/close", s.AuthRequired(), s.CloseVideo)
	api.POST("/uploads/callback", s.UploadCallback)

	// -------- Replies --------
	api.GET("/videos/:id/replies", s.ListReplies)
	api.POST("/videos/:id/replies", s.AuthRequired(), s.CreateReply)

	// -------- Orders --------
	api.POST("/orders", s.AuthRequired(), s.CreateOrder)
	api.GET("/orders/:id", s.AuthRequired(), s.GetOrder)
	api.POST("/orders/:id/cancel", s.AuthRequired(), s.CancelOrder)

	// -------- Toggles --------
	api.POST("/carts/:videoId", s.AuthRequired(), s.ToggleCart)
	api.POST("/subscriptions/:channelId", s.AuthRequired(), s.ToggleSubscription)

	// -------- Payment Webhooks --------
	api.POST("/payments/webhooks/:provider", s.HandlePaymentWebhook)
}
