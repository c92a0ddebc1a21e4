package httpx

type ctxKey string

const (
	CtxKeyUserID ctxKey = "user_id"
	CtxKeyActor  ctxKey = "actor"  // "member" or "freelancer"
	CtxKeyClaims ctxKey = "claims" // if you want full jwtx.Claims
)
