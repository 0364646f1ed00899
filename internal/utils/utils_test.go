package utils

import (
	"io"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
)

func TestAny(t *testing.T) {
	args := []string{"--port", "-h"}
	if !Any(args, func(x string) bool { return x == "-h" }) {
		t.Fatalf("expected -h to be found")
	}
	if Any(args, func(x string) bool { return x == "-?" }) {
		t.Fatalf("did not expect -? to be found")
	}
	if Any([]int{}, func(int) bool { return true }) {
		t.Fatalf("empty slice must not match")
	}
}

func TestParam_Unescapes(t *testing.T) {
	app := fiber.New()
	app.Get("/notes/:noteID/edit", func(c *fiber.Ctx) error {
		return c.SendString(Param(c, "noteID"))
	})

	cases := map[string]string{
		"/notes/n-1/edit":    "n-1",
		"/notes/a%2Fb/edit":  "a/b",
		"/notes/100%25/edit": "100%",
	}
	for target, want := range cases {
		resp, err := app.Test(httptest.NewRequest("GET", target, nil))
		if err != nil {
			t.Fatalf("request %s: %v", target, err)
		}
		body, _ := io.ReadAll(resp.Body)
		if string(body) != want {
			t.Fatalf("%s: expected %q, got %q", target, want, body)
		}
	}
}
