package dnsalias_test

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/takepoint/coordinator/internal/adapters/dnsalias"
	"github.com/takepoint/coordinator/pkg/logger"
	. "github.com/smartystreets/goconvey/convey"
)

func TestMain(m *testing.M) {
	if err := logger.Init(); err != nil {
		panic(err)
	}
	m.Run()
}

func TestResolverAlias(t *testing.T) {
	Convey("Given a resolver without credentials", t, func() {
		r := dnsalias.NewResolver("", "", "")

		Convey("Then it is inactive and passes addresses through", func() {
			So(r.Active(), ShouldBeFalse)

			name, err := r.Alias(context.Background(), "1.2.3.4")
			So(err, ShouldBeNil)
			So(name, ShouldEqual, "1.2.3.4")
		})
	})

	Convey("Given a DNS API with no record for the IP", t, func() {
		var gotEmail, gotKey string
		var created bool

		api := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			gotEmail = r.Header.Get("X-Auth-Email")
			gotKey = r.Header.Get("X-Auth-Key")

			switch r.Method {
			case http.MethodGet:
				fmt.Fprint(w, `{"success":true,"result":[]}`)
			case http.MethodPost:
				created = true
				fmt.Fprint(w, `{"success":true,"result":{"type":"A","name":"1-2-3-4.example.com","content":"1.2.3.4"}}`)
			}
		}))
		defer api.Close()

		r := dnsalias.NewResolver("zone-1", "key-1", "ops@example.com", dnsalias.WithAPIBase(api.URL))

		Convey("When aliasing the IP", func() {
			name, err := r.Alias(context.Background(), "1.2.3.4")

			Convey("Then a record is created and its hostname returned", func() {
				So(err, ShouldBeNil)
				So(created, ShouldBeTrue)
				So(name, ShouldEqual, "1-2-3-4.example.com")
				So(gotEmail, ShouldEqual, "ops@example.com")
				So(gotKey, ShouldEqual, "key-1")
			})
		})
	})

	Convey("Given a DNS API that already holds the record", t, func() {
		api := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.Method == http.MethodPost {
				t.Fatal("unexpected record creation")
			}
			fmt.Fprint(w, `{"success":true,"result":[{"type":"A","name":"1-2-3-4.example.com","content":"1.2.3.4"}]}`)
		}))
		defer api.Close()

		r := dnsalias.NewResolver("zone-1", "key-1", "ops@example.com", dnsalias.WithAPIBase(api.URL))

		Convey("Then the existing hostname is reused", func() {
			name, err := r.Alias(context.Background(), "1.2.3.4")
			So(err, ShouldBeNil)
			So(name, ShouldEqual, "1-2-3-4.example.com")
		})
	})
}
