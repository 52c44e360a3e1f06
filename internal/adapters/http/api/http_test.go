package api_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	jsoniter "github.com/json-iterator/go"

	"github.com/takepoint/coordinator/internal/adapters/http/api"
	"github.com/takepoint/coordinator/internal/adapters/persistence"
	service "github.com/takepoint/coordinator/internal/app"
	"github.com/takepoint/coordinator/internal/domain/leaderboard"
	"github.com/takepoint/coordinator/internal/domain/registry"
	"github.com/takepoint/coordinator/internal/domain/session"
	"github.com/takepoint/coordinator/internal/domain/stats"
	"github.com/takepoint/coordinator/pkg/logger"
	. "github.com/smartystreets/goconvey/convey"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

func TestMain(m *testing.M) {
	if err := logger.Init(); err != nil {
		panic(err)
	}
	m.Run()
}

// fakeDeps is a scripted Dependencies implementation.
type fakeDeps struct {
	registerKey string

	instances    []registry.Attributes
	reported     []stats.Delta
	queueFull    bool
	sessions     map[string]string // token -> account
	active       map[string]bool
	creds        map[string]string
	takenEmails  map[string]bool
	emailOwners  map[string]string // lowercased email -> username
	heartbeats   []string
	gameState    service.GameState
	loggedOut    []string
	lastSourceIP string
}

func newFakeDeps() *fakeDeps {
	return &fakeDeps{
		registerKey: "sekrit",
		sessions:    map[string]string{},
		active:      map[string]bool{},
		creds:       map[string]string{},
		takenEmails: map[string]bool{},
		emailOwners: map[string]string{},
		gameState: service.GameState{
			FactName:  "Kills",
			FactValue: "1,234",
			Entries: []leaderboard.Entry{
				{Account: "alice", Score: 200},
				{Account: "bob", Score: 100},
			},
		},
	}
}

func (f *fakeDeps) RegisterOrHeartbeatInstance(_ context.Context, id string, attrs registry.Attributes, authKey string, _ bool, sourceIP string) error {
	if authKey != f.registerKey || id == "" {
		return service.ErrUnauthorized
	}
	f.lastSourceIP = sourceIP
	f.instances = append(f.instances, attrs)
	return nil
}

func (f *fakeDeps) ListInstances() []registry.Attributes { return f.instances }

func (f *fakeDeps) ReportMatch(_ context.Context, _ string, delta stats.Delta, authKey string) error {
	if authKey != f.registerKey {
		return service.ErrUnauthorized
	}
	if f.queueFull {
		return service.ErrQueueFull
	}
	f.reported = append(f.reported, delta)
	return nil
}

func (f *fakeDeps) RegisterAccount(_ context.Context, username, email, _ string) error {
	if _, taken := f.creds[username]; taken {
		return persistence.ErrUsernameUnavailable
	}
	if f.takenEmails[email] {
		return persistence.ErrEmailUnavailable
	}
	f.creds[username] = "set"
	return nil
}

func (f *fakeDeps) Login(_ context.Context, usernameOrEmail, password string) (string, string, error) {
	account := usernameOrEmail
	if byEmail, ok := f.emailOwners[strings.ToLower(usernameOrEmail)]; ok {
		account = byEmail
	}
	if f.creds[account] != password {
		return "", "", persistence.ErrInvalidCredentials
	}
	if f.active[account] {
		return "", "", session.ErrAlreadyActive
	}
	f.active[account] = true
	token := "token-" + account
	f.sessions[token] = account
	return account, token, nil
}

func (f *fakeDeps) ResumeSession(_ context.Context, token string) (string, error) {
	account, ok := f.sessions[token]
	if !ok {
		return "", persistence.ErrSessionNotFound
	}
	f.active[account] = true
	return account, nil
}

func (f *fakeDeps) HeartbeatSessions(_ context.Context, accounts []string, authKey string) (int, error) {
	if authKey != f.registerKey {
		return 0, service.ErrUnauthorized
	}
	f.heartbeats = append(f.heartbeats, accounts...)
	return len(accounts), nil
}

func (f *fakeDeps) EndSession(_ context.Context, account string) bool {
	f.loggedOut = append(f.loggedOut, account)
	delete(f.active, account)
	return true
}

func (f *fakeDeps) GameState() service.GameState { return f.gameState }

func post(ts *httptest.Server, path, body string) (*http.Response, error) {
	return http.Post(ts.URL+path, "application/json", strings.NewReader(body)) //nolint:noctx
}

func decode(t *testing.T, resp *http.Response, v any) {
	t.Helper()
	defer resp.Body.Close() //nolint:errcheck
	if err := json.NewDecoder(resp.Body).Decode(v); err != nil {
		t.Fatalf("decode response: %v", err)
	}
}

func TestPublicEndpoints(t *testing.T) {
	Convey("Given the API server", t, func() {
		deps := newFakeDeps()
		ts := httptest.NewServer(api.NewServer(deps).Router())
		defer ts.Close()

		Convey("When GET / is requested", func() {
			resp, err := http.Get(ts.URL + "/") //nolint:noctx
			So(err, ShouldBeNil)
			defer resp.Body.Close() //nolint:errcheck

			Convey("Then it greets", func() {
				So(resp.StatusCode, ShouldEqual, http.StatusOK)
			})
		})

		Convey("When GET /gameState is requested", func() {
			resp, err := http.Get(ts.URL + "/gameState") //nolint:noctx
			So(err, ShouldBeNil)

			var payload map[string]any
			decode(t, resp, &payload)

			Convey("Then the fun fact and ranked entries share one object", func() {
				So(payload["Kills"], ShouldEqual, "1,234")

				first, ok := payload["0"].(map[string]any)
				So(ok, ShouldBeTrue)
				So(first["username"], ShouldEqual, "alice")
				So(first["score"], ShouldEqual, 200.0)

				second, ok := payload["1"].(map[string]any)
				So(ok, ShouldBeTrue)
				So(second["username"], ShouldEqual, "bob")
			})
		})

		Convey("When GET /healthz is requested", func() {
			resp, err := http.Get(ts.URL + "/healthz") //nolint:noctx
			So(err, ShouldBeNil)
			defer resp.Body.Close() //nolint:errcheck
			So(resp.StatusCode, ShouldEqual, http.StatusOK)
		})
	})
}

func TestInstanceEndpoints(t *testing.T) {
	Convey("Given the API server", t, func() {
		deps := newFakeDeps()
		ts := httptest.NewServer(api.NewServer(deps).Router())
		defer ts.Close()

		Convey("When registering with a bad key", func() {
			resp, err := post(ts, "/register_instance", `{"auth":{"id":"i-1","registerKey":"wrong"},"data":{}}`)
			So(err, ShouldBeNil)
			defer resp.Body.Close() //nolint:errcheck

			Convey("Then the drop is indistinguishable from success", func() {
				So(resp.StatusCode, ShouldEqual, http.StatusOK)
				So(resp.ContentLength, ShouldBeLessThanOrEqualTo, 0)
				So(deps.instances, ShouldBeEmpty)
			})
		})

		Convey("When registering with the right key", func() {
			resp, err := post(ts, "/register_instance",
				`{"auth":{"id":"i-1","registerKey":"sekrit"},"data":{"region":"Europe","players":4},"override":true}`)
			So(err, ShouldBeNil)
			defer resp.Body.Close() //nolint:errcheck

			Convey("Then the instance is recorded", func() {
				So(resp.StatusCode, ShouldEqual, http.StatusOK)
				So(deps.instances, ShouldHaveLength, 1)
				So(deps.instances[0].Region, ShouldEqual, "Europe")
			})

			Convey("And find_instances lists it", func() {
				listResp, err := post(ts, "/find_instances", ``)
				So(err, ShouldBeNil)

				var got []registry.Attributes
				decode(t, listResp, &got)
				So(got, ShouldHaveLength, 1)
				So(got[0].Players, ShouldEqual, 4)
			})
		})
	})
}

func TestMatchEndpoints(t *testing.T) {
	Convey("Given the API server", t, func() {
		deps := newFakeDeps()
		ts := httptest.NewServer(api.NewServer(deps).Router())
		defer ts.Close()

		Convey("When reporting a match with the right key", func() {
			resp, err := post(ts, "/report_match",
				`{"auth":{"registerKey":"sekrit"},"username":"alice","stats":{"matchId":"m-1","score":150}}`)
			So(err, ShouldBeNil)
			defer resp.Body.Close() //nolint:errcheck

			Convey("Then it is accepted", func() {
				So(resp.StatusCode, ShouldEqual, http.StatusAccepted)
				So(deps.reported, ShouldHaveLength, 1)
				So(deps.reported[0].MatchID, ShouldEqual, "m-1")
			})
		})

		Convey("When reporting with a bad key", func() {
			resp, err := post(ts, "/report_match",
				`{"auth":{"registerKey":"wrong"},"username":"alice","stats":{}}`)
			So(err, ShouldBeNil)
			defer resp.Body.Close() //nolint:errcheck

			So(resp.StatusCode, ShouldEqual, http.StatusOK)
			So(deps.reported, ShouldBeEmpty)
		})

		Convey("When the merge queue is saturated", func() {
			deps.queueFull = true
			resp, err := post(ts, "/report_match",
				`{"auth":{"registerKey":"sekrit"},"username":"alice","stats":{}}`)
			So(err, ShouldBeNil)
			defer resp.Body.Close() //nolint:errcheck

			So(resp.StatusCode, ShouldEqual, http.StatusTooManyRequests)
		})

		Convey("When relaying a session heartbeat batch", func() {
			resp, err := post(ts, "/session_heartbeat",
				`{"auth":{"registerKey":"sekrit"},"usernames":["alice","bob"]}`)
			So(err, ShouldBeNil)

			var got map[string]int
			decode(t, resp, &got)
			So(got["refreshed"], ShouldEqual, 2)
			So(deps.heartbeats, ShouldResemble, []string{"alice", "bob"})
		})
	})
}

func TestAccountEndpoints(t *testing.T) {
	Convey("Given the API server with one account", t, func() {
		deps := newFakeDeps()
		deps.creds["alice"] = "hunter2"
		deps.emailOwners["alice@example.com"] = "alice"
		deps.takenEmails["taken@example.com"] = true
		ts := httptest.NewServer(api.NewServer(deps).Router())
		defer ts.Close()

		var body struct {
			Error    bool   `json:"error"`
			Code     int    `json:"code"`
			Desc     string `json:"desc"`
			Username string `json:"username"`
			Token    string `json:"token"`
		}

		Convey("When registering a taken username", func() {
			resp, err := post(ts, "/account/register",
				`{"username":"alice","password":"x","email":"new@example.com"}`)
			So(err, ShouldBeNil)
			decode(t, resp, &body)

			So(body.Error, ShouldBeTrue)
			So(body.Code, ShouldEqual, 1)
		})

		Convey("When registering a taken email", func() {
			resp, err := post(ts, "/account/register",
				`{"username":"newbie","password":"x","email":"taken@example.com"}`)
			So(err, ShouldBeNil)
			decode(t, resp, &body)

			So(body.Error, ShouldBeTrue)
			So(body.Code, ShouldEqual, 2)
		})

		Convey("When registering a fresh account", func() {
			resp, err := post(ts, "/account/register",
				`{"username":"newbie","password":"x","email":"new@example.com"}`)
			So(err, ShouldBeNil)
			decode(t, resp, &body)

			So(body.Error, ShouldBeFalse)
			So(body.Username, ShouldEqual, "newbie")
		})

		Convey("When logging in with bad credentials", func() {
			resp, err := post(ts, "/account/login", `{"username":"alice","password":"wrong"}`)
			So(err, ShouldBeNil)
			decode(t, resp, &body)

			So(body.Error, ShouldBeTrue)
			So(body.Code, ShouldEqual, 0)
		})

		Convey("When logging in by email address", func() {
			resp, err := post(ts, "/account/login", `{"username":"Alice@Example.com","password":"hunter2"}`)
			So(err, ShouldBeNil)
			decode(t, resp, &body)

			Convey("Then the response carries the canonical username", func() {
				So(body.Error, ShouldBeFalse)
				So(body.Username, ShouldEqual, "alice")
				So(body.Token, ShouldEqual, "token-alice")
			})
		})

		Convey("When logging in with good credentials", func() {
			resp, err := post(ts, "/account/login", `{"username":"alice","password":"hunter2"}`)
			So(err, ShouldBeNil)

			var cookie *http.Cookie
			for _, c := range resp.Cookies() {
				if c.Name == "session" {
					cookie = c
				}
			}
			decode(t, resp, &body)

			Convey("Then a session cookie and token are issued", func() {
				So(body.Error, ShouldBeFalse)
				So(body.Token, ShouldEqual, "token-alice")
				So(cookie, ShouldNotBeNil)
				So(cookie.Value, ShouldEqual, "token-alice")
			})

			Convey("And a second login reports the active session", func() {
				again, err := post(ts, "/account/login", `{"username":"alice","password":"hunter2"}`)
				So(err, ShouldBeNil)
				decode(t, again, &body)

				So(body.Error, ShouldBeTrue)
				So(body.Code, ShouldEqual, 3)
			})

			Convey("And the session resumes from the cookie", func() {
				req, err := http.NewRequest(http.MethodPost, ts.URL+"/account/resume", strings.NewReader(`{}`)) //nolint:noctx
				So(err, ShouldBeNil)
				req.AddCookie(cookie)

				resumeResp, err := ts.Client().Do(req)
				So(err, ShouldBeNil)
				decode(t, resumeResp, &body)

				So(body.Error, ShouldBeFalse)
				So(body.Username, ShouldEqual, "alice")
			})

			Convey("And logout ends the session", func() {
				logoutResp, err := post(ts, "/account/logout", `{"username":"alice"}`)
				So(err, ShouldBeNil)
				decode(t, logoutResp, &body)

				So(body.Error, ShouldBeFalse)
				So(deps.loggedOut, ShouldResemble, []string{"alice"})
			})
		})

		Convey("When resuming with an unknown token", func() {
			resp, err := post(ts, "/account/resume", `{"token":"nope"}`)
			So(err, ShouldBeNil)
			decode(t, resp, &body)

			So(body.Error, ShouldBeTrue)
		})
	})
}
