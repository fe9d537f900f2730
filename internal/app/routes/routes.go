package routes

import (
	"github.com/gin-gonic/gin"

	"github.com/commune-social/commune/internal/app/controllers"
	"github.com/commune-social/commune/internal/middleware"
)

// SetupRouter configures all application routes
func SetupRouter(
	router *gin.Engine,
	communityController *controllers.CommunityController,
	membershipController *controllers.MembershipController,
	moderationController *controllers.ModerationController,
	postController *controllers.PostController,
	authMiddleware *middleware.AuthMiddleware,
) {
	// API version group
	v1 := router.Group("/api/v1")

	// --- Community routes ---
	// Reads are public; authenticated viewers get their relationship to the
	// community included. The :identifier parameter accepts a numeric ID, a
	// community name or a slug.
	communities := v1.Group("/communities")
	{
		communities.GET("", authMiddleware.OptionalAuth(), communityController.GetAllCommunities)
		communities.GET("/:identifier", authMiddleware.OptionalAuth(), communityController.GetCommunity)
		communities.GET("/:identifier/moderators", moderationController.GetModerators)
		communities.GET("/:identifier/posts", authMiddleware.OptionalAuth(), postController.GetPosts)

		protected := communities.Group("")
		protected.Use(authMiddleware.JWTAuth())
		{
			protected.POST("", communityController.CreateCommunity)
			protected.PUT("/:identifier", communityController.UpdateCommunity)
			protected.DELETE("/:identifier", communityController.DeleteCommunity)
			protected.GET("/:identifier/stats", communityController.GetCommunityStats)

			// Membership lifecycle
			protected.POST("/:identifier/members", membershipController.JoinCommunity)
			protected.DELETE("/:identifier/members", membershipController.LeaveCommunity)
			protected.GET("/:identifier/members", membershipController.GetMembers)

			// Bans
			protected.POST("/:identifier/bans", moderationController.BanUser)
			protected.DELETE("/:identifier/bans/:userId", moderationController.UnbanUser)

			// Moderator roster
			protected.POST("/:identifier/moderators", moderationController.AddModerator)
			protected.PUT("/:identifier/moderators/:userId", moderationController.UpdateModerator)
			protected.DELETE("/:identifier/moderators/:userId", moderationController.RemoveModerator)

			// Posting
			protected.POST("/:identifier/posts", postController.CreatePost)
		}
	}

	// --- Post routes ---
	posts := v1.Group("/posts")
	{
		posts.GET("/:id", postController.GetPost)

		postsProtected := posts.Group("")
		postsProtected.Use(authMiddleware.JWTAuth())
		{
			postsProtected.PUT("/:id", postController.UpdatePost)
			postsProtected.DELETE("/:id", postController.DeletePost)
			postsProtected.POST("/:id/approve", postController.ApprovePost)
			postsProtected.POST("/:id/vote", postController.VotePost)
		}
	}
}
