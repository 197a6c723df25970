package session

import (
	"aquaflow/bizerror"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/patrickmn/go-cache"
)

const TokenExpiration = 24 * time.Hour

// TokenCache keeps verified sessions so repeated requests skip signature checks
var TokenCache = cache.New(TokenExpiration, 1*time.Minute)

const KeySecCtx = "SecCtx"
const KeySecToken = "sec_token"

func FindSecurityContext(ctx *gin.Context) *Context {
	value, found := ctx.Get(KeySecCtx)
	if !found {
		return nil
	}
	secCtx, ok := value.(*Context)
	if !ok || secCtx.Token == "" {
		return nil
	}
	return secCtx
}

func SaveSecurityContext(ctx *gin.Context, secCtx *Context) {
	if secCtx != nil && secCtx.Token != "" {
		ctx.Set(KeySecCtx, secCtx)
	}
}

func extractToken(ctx *gin.Context) string {
	header := ctx.GetHeader("Authorization")
	if strings.HasPrefix(header, "Bearer ") {
		return strings.TrimPrefix(header, "Bearer ")
	}
	token, err := ctx.Cookie(KeySecToken)
	if err != nil {
		return ""
	}
	return token
}

func SimpleAuthFilter() gin.HandlerFunc {
	return func(ctx *gin.Context) {
		token := extractToken(ctx)
		if token == "" {
			panic(bizerror.ErrUnauthenticated)
		}
		if value, found := TokenCache.Get(token); found {
			if secCtx, ok := value.(*Context); ok {
				SaveSecurityContext(ctx, secCtx)
				ctx.Next()
				return
			}
		}
		secCtx, err := ParseToken(token)
		if err != nil || secCtx == nil {
			panic(bizerror.ErrUnauthenticated)
		}
		TokenCache.Set(token, secCtx, cache.DefaultExpiration)
		SaveSecurityContext(ctx, secCtx)
		ctx.Next()
	}
}
