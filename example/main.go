package main

import (
	"log"
	"net/http"
	"os"

	"github.com/bertrandmartel/yummy/sp/config"
	"github.com/bertrandmartel/yummy/sp/middleware"
	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"
	mw "github.com/labstack/echo/v4/middleware"
	"github.com/rs/zerolog"
	uuid "github.com/satori/go.uuid"
	"gopkg.in/go-playground/validator.v9"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("[SESSION] no .env file, using config secret")
	}
	config, err := config.ParseConfig("example/config.json")
	if err != nil {
		log.Fatal(err)
		return
	}
	if secret := os.Getenv("YUMMY_SECRET"); secret != "" {
		config.Secret = secret
	}
	logger := zerolog.New(os.Stderr).With().Timestamp().Logger()
	sessions, err := middleware.New(config, middleware.WithLogger(logger))
	if err != nil {
		log.Fatal(err)
		return
	}
	log.Printf("[SESSION] cookie %v, iv %v\n", config.Key, config.IV)

	e := echo.New()
	UseCommonMiddleware(e)
	e.Use(sessions.Echo())
	routes(e)
	e.Logger.Fatal(e.Start(":6004"))
}

type NameRequest struct {
	Name string `json:"name" form:"name" validate:"required,max=64"`
}

func routes(e *echo.Echo) {
	e.GET("/", func(c echo.Context) error {
		s := middleware.FromEcho(c).Session()
		if _, ok := s.String("visitor"); !ok {
			s.Set("visitor", uuid.NewV4().String())
		}
		visits, _ := s.Int64("visits")
		visits++
		s.Set("visits", visits)
		name, _ := s.String("name")
		visitor, _ := s.String("visitor")
		return c.JSON(http.StatusOK, map[string]interface{}{
			"visitor": visitor,
			"name":    name,
			"visits":  visits,
		})
	})
	e.POST("/name", func(c echo.Context) error {
		request := new(NameRequest)
		if err := c.Bind(request); err != nil {
			return c.JSON(http.StatusBadRequest, SendError("invalid_request", "incorrect parameters"))
		}
		if err := c.Validate(request); err != nil {
			return c.JSON(http.StatusBadRequest, SendError("invalid_request", err.Error()))
		}
		middleware.FromEcho(c).Session().Set("name", request.Name)
		return c.NoContent(http.StatusNoContent)
	})
	// rolling session: resend the cookie so max_age starts over
	e.GET("/touch", func(c echo.Context) error {
		middleware.FromEcho(c).Touch()
		return c.NoContent(http.StatusNoContent)
	})
	e.GET("/reset", func(c echo.Context) error {
		middleware.FromEcho(c).Reset()
		return c.Redirect(http.StatusFound, "/")
	})
	e.GET("/logout", func(c echo.Context) error {
		middleware.FromEcho(c).Clear()
		return c.Redirect(http.StatusFound, "/")
	})
}

type ErrorResponse struct {
	Error            string `json:"error"`
	ErrorDescription string `json:"error_description"`
}

func SendError(errorMessage string, errorDescription string) *ErrorResponse {
	return &ErrorResponse{
		Error:            errorMessage,
		ErrorDescription: errorDescription,
	}
}

//middleware for validation
type CustomValidator struct {
	validator *validator.Validate
}

func (cv *CustomValidator) Validate(i interface{}) error {
	return cv.validator.Struct(i)
}

func UseCommonMiddleware(e *echo.Echo) {
	e.Validator = &CustomValidator{validator: validator.New()}

	e.Use(mw.LoggerWithConfig(mw.LoggerConfig{
		Format: "${remote_ip} - - ${time_rfc3339_nano} \"${method} ${uri} ${protocol}\" ${status} ${bytes_out} \"${referer}\" \"${user_agent}\"\n",
	}))
	e.Use(mw.Recover())
}
