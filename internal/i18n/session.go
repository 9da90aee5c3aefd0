package i18n

import (
	"log"
	"strings"

	"github.com/gofiber/fiber/v2"
)

const (
	ClientIDHeader = "X-Client-ID"
	ClientIDCookie = "client_id"

	ctxSessionKey = "i18n_session"
)

// Session is the per-request view of a client's preferences.
type Session struct {
	ClientID string   `json:"client_id"`
	Language Language `json:"language"`
}

func clientID(c *fiber.Ctx) string {
	if id := strings.TrimSpace(c.Get(ClientIDHeader)); id != "" {
		return id
	}
	return strings.TrimSpace(c.Cookies(ClientIDCookie))
}

// SessionMiddleware resolves the client's language before the handler runs.
// A store failure falls back to def instead of failing the request.
func SessionMiddleware(store PreferenceStore, def Language) fiber.Handler {
	return func(c *fiber.Ctx) error {
		sess := Session{ClientID: clientID(c), Language: def}
		if sess.ClientID != "" {
			lang, ok, err := store.Language(c.UserContext(), sess.ClientID)
			if err != nil {
				log.Printf("Dil tercihi okunamadı (%s): %v", sess.ClientID, err)
			} else if ok {
				sess.Language = lang
			}
		}
		c.Locals(ctxSessionKey, sess)
		return c.Next()
	}
}

// SessionFrom returns the session set by SessionMiddleware, or a default one.
func SessionFrom(c *fiber.Ctx) Session {
	if sess, ok := c.Locals(ctxSessionKey).(Session); ok {
		return sess
	}
	return Session{ClientID: clientID(c), Language: DefaultLanguage}
}

type SetLanguageRequest struct {
	Language string `json:"language"`
}

// GET /api/preferences/language
func GetLanguageHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"client_id": SessionFrom(c).ClientID,
			"language":  SessionFrom(c).Language,
			"supported": Supported(),
		})
	}
}

// PUT /api/preferences/language
func SetLanguageHandler(store PreferenceStore) fiber.Handler {
	return func(c *fiber.Ctx) error {
		sess := SessionFrom(c)
		if sess.ClientID == "" {
			return fiber.NewError(fiber.StatusBadRequest, "X-Client-ID header veya client_id cookie zorunlu")
		}

		var body SetLanguageRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Geçersiz istek gövdesi")
		}

		lang, ok := ParseLanguage(body.Language)
		if !ok {
			return fiber.NewError(fiber.StatusBadRequest, "Desteklenmeyen dil (tr, en, ru)")
		}

		if err := store.SetLanguage(c.UserContext(), sess.ClientID, lang); err != nil {
			log.Printf("Dil tercihi kaydedilemedi (%s): %v", sess.ClientID, err)
			return fiber.NewError(fiber.StatusInternalServerError, "Dil tercihi kaydedilemedi")
		}

		return c.JSON(fiber.Map{
			"client_id": sess.ClientID,
			"language":  lang,
			"message":   T(lang, MsgLanguageUpdated),
		})
	}
}
