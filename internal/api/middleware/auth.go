package middleware

import (
	"context"
	"errors"
	"net/http"
	"strconv"

	"github.com/m04kA/SMC-SalonScheduler/internal/api/handlers"
	"github.com/m04kA/SMC-SalonScheduler/internal/domain"
	authClient "github.com/m04kA/SMC-SalonScheduler/internal/integrations/authservice"
)

const userIDHeader = "X-User-ID"

type actorCtxKey struct{}

// AuthClient интерфейс клиента сервиса аутентификации
type AuthClient interface {
	GetActor(ctx context.Context, userID int64) (*authClient.ActorInfo, error)
}

// Logger интерфейс для логирования
type Logger interface {
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}

// Auth аутентифицирует запрос по заголовку X-User-ID и резолвит актора
// через сервис аутентификации. Роль и режим никогда не берутся из
// запроса - только из ответа auth-сервиса.
func Auth(client AuthClient, log Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			rawID := r.Header.Get(userIDHeader)
			if rawID == "" {
				handlers.RespondError(w, http.StatusUnauthorized, "требуется заголовок X-User-ID")
				return
			}

			userID, err := strconv.ParseInt(rawID, 10, 64)
			if err != nil || userID <= 0 {
				log.Warn("Auth: invalid %s header value %q", userIDHeader, rawID)
				handlers.RespondError(w, http.StatusUnauthorized, "некорректный заголовок X-User-ID")
				return
			}

			info, err := client.GetActor(r.Context(), userID)
			if err != nil {
				if errors.Is(err, authClient.ErrActorNotFound) {
					log.Warn("Auth: user id=%d not found", userID)
					handlers.RespondError(w, http.StatusUnauthorized, "пользователь не найден")
					return
				}
				log.Error("Auth: failed to resolve actor for user id=%d: %v", userID, err)
				handlers.RespondError(w, http.StatusBadGateway, "сервис аутентификации недоступен")
				return
			}

			ctx := context.WithValue(r.Context(), actorCtxKey{}, info.ToDomain())
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// ActorFromContext возвращает актора, положенного Auth middleware
func ActorFromContext(ctx context.Context) (domain.Actor, bool) {
	actor, ok := ctx.Value(actorCtxKey{}).(domain.Actor)
	return actor, ok
}
