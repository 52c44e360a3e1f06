package service_test

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	service "github.com/takepoint/coordinator/internal/app"
	"github.com/takepoint/coordinator/internal/domain/registry"
	"github.com/takepoint/coordinator/internal/domain/session"
	"github.com/takepoint/coordinator/internal/domain/stats"
	"github.com/takepoint/coordinator/pkg/logger"
	. "github.com/smartystreets/goconvey/convey"

	"github.com/takepoint/coordinator/internal/adapters/geo"
)

func TestMain(m *testing.M) {
	if err := logger.Init(); err != nil {
		panic(err)
	}
	m.Run()
}

type fakeProfiles struct {
	mu       sync.Mutex
	profiles map[string]*stats.Profile
	merged   int
	pruned   int
}

func newFakeProfiles(accounts ...string) *fakeProfiles {
	f := &fakeProfiles{profiles: make(map[string]*stats.Profile)}
	for _, a := range accounts {
		f.profiles[a] = stats.NewProfile(0)
	}
	return f
}

func (f *fakeProfiles) LoadProfile(_ context.Context, account string) (*stats.Profile, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	p, ok := f.profiles[account]
	if !ok {
		return nil, errors.New("profile not found")
	}
	cp := *p
	cp.Weapons = make(map[string]*stats.WeaponStats, len(p.Weapons))
	for name, w := range p.Weapons {
		wc := *w
		cp.Weapons[name] = &wc
	}
	return &cp, nil
}

func (f *fakeProfiles) SaveProfile(_ context.Context, account string, p *stats.Profile) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.profiles[account] = p
	f.merged++
	return nil
}

func (f *fakeProfiles) RecordMatchHistory(context.Context, string, *stats.Delta, int64) error {
	return nil
}

func (f *fakeProfiles) PruneMatchHistory(context.Context, time.Duration) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.pruned++
	return 0, nil
}

func (f *fakeProfiles) mergeCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.merged
}

func (f *fakeProfiles) profile(account string) *stats.Profile {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.profiles[account]
}

type fakeAccounts struct {
	mu     sync.Mutex
	creds  map[string]string
	emails map[string]string // lowercased email -> username
}

func newFakeAccounts() *fakeAccounts {
	return &fakeAccounts{
		creds:  make(map[string]string),
		emails: make(map[string]string),
	}
}

func (f *fakeAccounts) Register(_ context.Context, username, email, password string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.creds[username]; ok {
		return errors.New("username unavailable")
	}
	f.creds[username] = password
	f.emails[strings.ToLower(email)] = username
	return nil
}

func (f *fakeAccounts) Authenticate(_ context.Context, usernameOrEmail, password string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	account := usernameOrEmail
	if byEmail, ok := f.emails[strings.ToLower(usernameOrEmail)]; ok {
		account = byEmail
	}
	if stored, ok := f.creds[account]; !ok || stored != password {
		return "", errors.New("invalid credentials")
	}
	return account, nil
}

type fakeSessions struct {
	mu     sync.Mutex
	tokens map[string]string // token -> account
	putErr error
}

func newFakeSessions() *fakeSessions {
	return &fakeSessions{tokens: make(map[string]string)}
}

func (f *fakeSessions) Put(_ context.Context, account, token string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.putErr != nil {
		return f.putErr
	}
	f.tokens[token] = account
	return nil
}

func (f *fakeSessions) Resume(_ context.Context, token string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	account, ok := f.tokens[token]
	if !ok {
		return "", errors.New("session not found")
	}
	return account, nil
}

func (f *fakeSessions) Delete(_ context.Context, account string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for token, a := range f.tokens {
		if a == account {
			delete(f.tokens, token)
		}
	}
	return nil
}

type fakeGeo struct{ loc geo.Location }

func (f *fakeGeo) Locate(context.Context, string) (geo.Location, error) {
	return f.loc, nil
}

type fakeAlias struct{}

func (fakeAlias) Alias(_ context.Context, ip string) (string, error) {
	return "alias-" + ip, nil
}

func waitFor(cond func() bool) bool {
	deadline := time.Now().Add(5 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return true
		}
		time.Sleep(5 * time.Millisecond)
	}
	return cond()
}

func attrs(players int) registry.Attributes {
	return registry.Attributes{
		Region:   "given-region",
		City:     "given-city",
		GameType: "conquest",
		Owner:    "ops",
		Label:    "eu-1",
		URL:      "1.2.3.4",
		ShortID:  "abc",
		Players:  players,
		Capacity: 20,
	}
}

func startService(t *testing.T, profiles *fakeProfiles, accounts *fakeAccounts, sessions *fakeSessions, extra ...service.Option) *service.Service {
	t.Helper()

	opts := append([]service.Option{
		service.WithRegisterKey("sekrit"),
		service.WithGeolocator(&fakeGeo{loc: geo.Location{Region: "Europe", City: "Frankfurt"}}),
		service.WithAliasResolver(fakeAlias{}),
		service.WithWorkerCount(2),
	}, extra...)

	svc := service.New(profiles, accounts, sessions, opts...)
	if err := svc.Start(context.Background()); err != nil {
		t.Fatalf("start service: %v", err)
	}
	t.Cleanup(svc.Stop)
	return svc
}

func TestInstanceLifecycle(t *testing.T) {
	Convey("Given a started service", t, func() {
		ctx := context.Background()
		svc := startService(t, newFakeProfiles(), newFakeAccounts(), newFakeSessions())

		Convey("When registering with a bad key", func() {
			err := svc.RegisterOrHeartbeatInstance(ctx, "inst-1", attrs(0), "wrong", false, "9.9.9.9")

			Convey("Then the request is dropped and nothing is registered", func() {
				So(errors.Is(err, service.ErrUnauthorized), ShouldBeTrue)
				So(svc.ListInstances(), ShouldBeEmpty)
			})
		})

		Convey("When registering without an instance id", func() {
			err := svc.RegisterOrHeartbeatInstance(ctx, "", attrs(0), "sekrit", false, "9.9.9.9")
			So(errors.Is(err, service.ErrUnauthorized), ShouldBeTrue)
		})

		Convey("When registering a fresh instance without override", func() {
			So(svc.RegisterOrHeartbeatInstance(ctx, "inst-1", attrs(3), "sekrit", false, "9.9.9.9"), ShouldBeNil)

			Convey("Then placement comes from geolocation and DNS alias", func() {
				list := svc.ListInstances()
				So(list, ShouldHaveLength, 1)
				So(list[0].Region, ShouldEqual, "Europe")
				So(list[0].City, ShouldEqual, "Frankfurt")
				So(list[0].URL, ShouldEqual, "alias-9.9.9.9")
				So(list[0].Players, ShouldEqual, 3)
			})

			Convey("And a heartbeat only moves the player count", func() {
				hb := attrs(7)
				hb.Region = "should-not-stick"
				So(svc.RegisterOrHeartbeatInstance(ctx, "inst-1", hb, "sekrit", false, "9.9.9.9"), ShouldBeNil)

				list := svc.ListInstances()
				So(list, ShouldHaveLength, 1)
				So(list[0].Region, ShouldEqual, "Europe")
				So(list[0].Players, ShouldEqual, 7)
			})
		})

		Convey("When registering with the override flag", func() {
			So(svc.RegisterOrHeartbeatInstance(ctx, "inst-2", attrs(0), "sekrit", true, "9.9.9.9"), ShouldBeNil)

			Convey("Then the supplied placement is kept verbatim", func() {
				list := svc.ListInstances()
				So(list, ShouldHaveLength, 1)
				So(list[0].Region, ShouldEqual, "given-region")
				So(list[0].URL, ShouldEqual, "1.2.3.4")
			})
		})
	})
}

func TestServiceRestart(t *testing.T) {
	Convey("Given a service that has been stopped", t, func() {
		ctx := context.Background()
		svc := startService(t, newFakeProfiles(), newFakeAccounts(), newFakeSessions())
		So(svc.RegisterOrHeartbeatInstance(ctx, "inst-1", attrs(1), "sekrit", false, "9.9.9.9"), ShouldBeNil)
		svc.Stop()

		Convey("When starting it again", func() {
			So(svc.Start(ctx), ShouldBeNil)

			Convey("Then it serves requests on fresh state", func() {
				So(svc.ListInstances(), ShouldBeEmpty)
				So(svc.RegisterOrHeartbeatInstance(ctx, "inst-2", attrs(2), "sekrit", false, "9.9.9.9"), ShouldBeNil)
				So(svc.ListInstances(), ShouldHaveLength, 1)
			})

			Convey("And stopping again completes cleanly", func() {
				So(svc.Stop, ShouldNotPanic)
			})
		})
	})
}

func TestMatchReporting(t *testing.T) {
	Convey("Given a started service with one account", t, func() {
		ctx := context.Background()
		profiles := newFakeProfiles("alice")
		svc := startService(t, profiles, newFakeAccounts(), newFakeSessions())

		d := stats.Delta{MatchID: "m-1", Score: 250, Kills: 5, TimeAlive: 60000, SpawnTime: 1000}

		Convey("When a report arrives with a bad key", func() {
			err := svc.ReportMatch(ctx, "alice", d, "wrong")
			So(errors.Is(err, service.ErrUnauthorized), ShouldBeTrue)
		})

		Convey("When a report is accepted", func() {
			So(svc.ReportMatch(ctx, "alice", d, "sekrit"), ShouldBeNil)
			So(waitFor(func() bool { return profiles.mergeCount() == 1 }), ShouldBeTrue)

			Convey("Then the profile absorbs the delta", func() {
				p := profiles.profile("alice")
				So(p.Score, ShouldEqual, 250)
				So(p.Kills, ShouldEqual, 5)
			})

			Convey("Then the score reaches the game state", func() {
				So(waitFor(func() bool { return len(svc.GameState().Entries) == 1 }), ShouldBeTrue)

				state := svc.GameState()
				So(state.Entries[0].Account, ShouldEqual, "alice")
				So(state.Entries[0].Score, ShouldEqual, 250)
				So(state.FactName, ShouldNotBeEmpty)
			})

			Convey("And a redelivery of the same match is absorbed", func() {
				So(svc.ReportMatch(ctx, "alice", d, "sekrit"), ShouldBeNil)
				time.Sleep(50 * time.Millisecond)
				So(profiles.mergeCount(), ShouldEqual, 1)
			})
		})
	})
}

func TestSessionFlows(t *testing.T) {
	Convey("Given a started service with a registered account", t, func() {
		ctx := context.Background()
		sessions := newFakeSessions()
		accounts := newFakeAccounts()
		svc := startService(t, newFakeProfiles(), accounts, sessions)

		So(svc.RegisterAccount(ctx, "alice", "alice@example.com", "hunter2"), ShouldBeNil)

		Convey("When logging in with bad credentials", func() {
			_, _, err := svc.Login(ctx, "alice", "wrong")

			Convey("Then no session is created", func() {
				So(err, ShouldNotBeNil)
				So(svc.SessionActive("alice"), ShouldBeFalse)
			})
		})

		Convey("When logging in by email address", func() {
			account, token, err := svc.Login(ctx, "Alice@Example.com", "hunter2")

			Convey("Then the session is keyed by the canonical username", func() {
				So(err, ShouldBeNil)
				So(account, ShouldEqual, "alice")
				So(token, ShouldHaveLength, 128)
				So(svc.SessionActive("alice"), ShouldBeTrue)
				So(svc.SessionActive("Alice@Example.com"), ShouldBeFalse)
			})
		})

		Convey("When logging in with good credentials", func() {
			account, token, err := svc.Login(ctx, "alice", "hunter2")

			Convey("Then a session token is issued and persisted", func() {
				So(err, ShouldBeNil)
				So(account, ShouldEqual, "alice")
				So(token, ShouldHaveLength, 128)
				So(svc.SessionActive("alice"), ShouldBeTrue)
			})

			Convey("And a second login is rejected without disturbing the first", func() {
				_, _, err := svc.Login(ctx, "alice", "hunter2")
				So(errors.Is(err, session.ErrAlreadyActive), ShouldBeTrue)
				So(svc.SessionActive("alice"), ShouldBeTrue)
			})

			Convey("And the session can be resumed by token", func() {
				svc.EndSession(ctx, "alice")
				sessions.Put(ctx, "alice", token) // simulate surviving cookie

				account, err := svc.ResumeSession(ctx, token)
				So(err, ShouldBeNil)
				So(account, ShouldEqual, "alice")
				So(svc.SessionActive("alice"), ShouldBeTrue)
			})

			Convey("And logout ends it everywhere", func() {
				So(svc.EndSession(ctx, "alice"), ShouldBeTrue)
				So(svc.SessionActive("alice"), ShouldBeFalse)

				_, err := svc.ResumeSession(ctx, token)
				So(err, ShouldNotBeNil)
			})
		})

		Convey("When the durable session write fails", func() {
			sessions.putErr = errors.New("mongo down")
			_, _, err := svc.Login(ctx, "alice", "hunter2")

			Convey("Then the login fails and the in-memory session is rolled back", func() {
				So(err, ShouldNotBeNil)
				So(svc.SessionActive("alice"), ShouldBeFalse)
			})
		})
	})
}
