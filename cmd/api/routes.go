package main

import (
	"github.com/gin-gonic/gin"

	"educhat-platform/internal/httpapi"
)

// registerRoutes wires HTTP routes to handlers.
// Keep this file free of business logic. Handlers should delegate to internal modules.
//
// Endpoints are mounted under the serving prefixes /v1/{dev,prod}/{admin,user}.
// The authorization gate keys on the logical path after the prefix, so
// placement here only controls which URLs exist, not who may call them.
func registerRoutes(r *gin.Engine, h httpapi.Handlers) {
	// Bare liveness probe for load balancers, outside the versioned prefixes.
	r.GET("/ping", h.Ping)

	for _, env := range []string{"dev", "prod"} {
		user := r.Group("/v1/" + env + "/user")
		{
			user.GET("/sso", h.SSOLogin)
			user.GET("/generate_access_token", h.GenerateAccessToken)
			user.GET("/logout_all_devices", h.LogoutAllDevices)
			user.GET("/get_temp_stt_auth_code", h.GetTempSTTAuthCode)
			user.GET("/ping", h.Ping)
			user.GET("/diagnostics", h.Diagnostics)
		}

		admin := r.Group("/v1/" + env + "/admin")
		{
			admin.GET("/generate_access_token", h.GenerateAccessToken)
			admin.GET("/ping", h.Ping)
			admin.GET("/diagnostics", h.Diagnostics)
			admin.GET("/access/get_user_list", h.GetUserList)
			admin.POST("/workspace/set_user_role", h.SetUserRole)
			admin.POST("/workspace/delete_user_from_workspace", h.DeleteUserFromWorkspace)
		}
	}
}
