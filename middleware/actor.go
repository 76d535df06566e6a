package middleware

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/choretab/choretab/utils"
)

// ContextActorKey is the gin context key holding the acting user's id.
const ContextActorKey = "actor_id"

// ActorHeader carries the already-authenticated user id. Authentication
// itself happens upstream; this engine only needs to know who is acting.
const ActorHeader = "X-Actor-ID"

// ActorRequired extracts the acting user id from the request header.
func ActorRequired() gin.HandlerFunc {
	return func(ctx *gin.Context) {
		raw := ctx.GetHeader(ActorHeader)
		if raw == "" {
			utils.Error(ctx, http.StatusUnauthorized, utils.CodeUnauthorized, "missing actor header")
			ctx.Abort()
			return
		}
		id, err := strconv.ParseUint(raw, 10, 32)
		if err != nil || id == 0 {
			utils.Error(ctx, http.StatusUnauthorized, utils.CodeUnauthorized, "invalid actor header")
			ctx.Abort()
			return
		}
		ctx.Set(ContextActorKey, uint(id))
		ctx.Next()
	}
}

// ActorID returns the acting user id stored by ActorRequired.
func ActorID(ctx *gin.Context) (uint, bool) {
	v, ok := ctx.Get(ContextActorKey)
	if !ok {
		return 0, false
	}
	id, ok := v.(uint)
	return id, ok
}
