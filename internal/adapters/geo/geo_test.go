package geo_test

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/takepoint/coordinator/internal/adapters/geo"
	"github.com/takepoint/coordinator/pkg/logger"
	. "github.com/smartystreets/goconvey/convey"
)

func TestMain(m *testing.M) {
	if err := logger.Init(); err != nil {
		panic(err)
	}
	m.Run()
}

func TestResolverLocate(t *testing.T) {
	Convey("Given lookup and echo endpoints", t, func() {
		ctx := context.Background()

		var lookedUp string
		lookup := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			lookedUp = r.URL.Path
			fmt.Fprint(w, `{"status":"success","countryCode":"DE","city":"Frankfurt am Main"}`)
		}))
		defer lookup.Close()

		echo := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			fmt.Fprint(w, "93.184.216.34")
		}))
		defer echo.Close()

		resolver := geo.NewResolver(
			geo.WithLookupEndpoint(lookup.URL),
			geo.WithPublicIPEndpoint(echo.URL),
		)

		Convey("When locating a public IPv4 address", func() {
			loc, err := resolver.Locate(ctx, "1.2.3.4")

			Convey("Then the lookup maps country to region and trims the city", func() {
				So(err, ShouldBeNil)
				So(lookedUp, ShouldEqual, "/1.2.3.4")
				So(loc.Region, ShouldEqual, "Europe")
				So(loc.City, ShouldEqual, "Frankfurt")
			})
		})

		Convey("When locating a loopback address", func() {
			_, err := resolver.Locate(ctx, "127.0.0.1")

			Convey("Then the service's own public IP is looked up instead", func() {
				So(err, ShouldBeNil)
				So(lookedUp, ShouldEqual, "/93.184.216.34")
			})
		})

		Convey("When locating an IPv6 source", func() {
			_, err := resolver.Locate(ctx, "2001:db8::1")

			Convey("Then the echo fallback is used", func() {
				So(err, ShouldBeNil)
				So(lookedUp, ShouldEqual, "/93.184.216.34")
			})
		})
	})

	Convey("Given a lookup endpoint that fails the query", t, func() {
		ctx := context.Background()

		lookup := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			fmt.Fprint(w, `{"status":"fail"}`)
		}))
		defer lookup.Close()

		resolver := geo.NewResolver(geo.WithLookupEndpoint(lookup.URL))

		Convey("Then Locate surfaces the failure", func() {
			_, err := resolver.Locate(ctx, "1.2.3.4")
			So(err, ShouldNotBeNil)
		})
	})

	Convey("Given an unlisted country code", t, func() {
		ctx := context.Background()

		lookup := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			fmt.Fprint(w, `{"status":"success","countryCode":"BR","city":"Sao Paulo"}`)
		}))
		defer lookup.Close()

		resolver := geo.NewResolver(geo.WithLookupEndpoint(lookup.URL))

		Convey("Then the raw country code stands in for the region", func() {
			loc, err := resolver.Locate(ctx, "1.2.3.4")
			So(err, ShouldBeNil)
			So(loc.Region, ShouldEqual, "BR")
		})
	})
}
