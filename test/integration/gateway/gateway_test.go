// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Authgate Contributors

//go:build integration

package gateway_test

import (
	"io"
	"net/http"
	"net/url"
	"strings"

	. "github.com/onsi/ginkgo/v2" //nolint:revive // ginkgo convention
	. "github.com/onsi/gomega"    //nolint:revive // gomega convention
)

// login posts credentials and returns the response with its body drained.
func (g *gateway) login(username, password, rd string) *http.Response {
	form := url.Values{"username": {username}, "password": {password}}
	if rd != "" {
		form.Set("rd", rd)
	}
	resp, err := g.client.PostForm(g.base+"/login", form)
	Expect(err).NotTo(HaveOccurred())
	_, _ = io.Copy(io.Discard, resp.Body)
	Expect(resp.Body.Close()).To(Succeed())
	return resp
}

func (g *gateway) sessionCookie(resp *http.Response) *http.Cookie {
	for _, c := range resp.Cookies() {
		if c.Name == "authgate_session" {
			return c
		}
	}
	Fail("no session cookie in response")
	return nil
}

// check calls the forward-auth endpoint with optional cookie, bearer token
// and forwarded URI, returning the status code.
func (g *gateway) check(cookie *http.Cookie, bearer, forwardedURI string) int {
	req, err := http.NewRequest(http.MethodGet, g.base+"/auth", nil)
	Expect(err).NotTo(HaveOccurred())
	if cookie != nil {
		req.AddCookie(cookie)
	}
	if bearer != "" {
		req.Header.Set("Authorization", "Bearer "+bearer)
	}
	if forwardedURI != "" {
		req.Header.Set("X-Forwarded-Uri", forwardedURI)
	}
	resp, err := g.client.Do(req)
	Expect(err).NotTo(HaveOccurred())
	Expect(resp.Body.Close()).To(Succeed())
	return resp.StatusCode
}

func (g *gateway) get(base, path string) (int, string) {
	resp, err := g.client.Get(base + path)
	Expect(err).NotTo(HaveOccurred())
	defer func() { _ = resp.Body.Close() }()
	body, err := io.ReadAll(resp.Body)
	Expect(err).NotTo(HaveOccurred())
	return resp.StatusCode, string(body)
}

var _ = Describe("Gateway", func() {
	var gw *gateway

	BeforeEach(func() {
		gw = startGateway("public_paths:\n  - /static/**\n  - /favicon.ico\n")
	})

	Describe("Login page", func() {
		It("renders the form", func() {
			status, body := gw.get(gw.base, "/login")
			Expect(status).To(Equal(http.StatusOK))
			Expect(body).To(ContainSubstring(`name="username"`))
			Expect(body).To(ContainSubstring(`type="password"`))
		})

		It("shows the decoded error for the failing field", func() {
			status, body := gw.get(gw.base, "/login?error=password_incorrect&username=alice")
			Expect(status).To(Equal(http.StatusOK))
			Expect(body).To(ContainSubstring(`id="password-error"`))
			Expect(body).To(ContainSubstring(`value="alice"`))
		})
	})

	Describe("Login", func() {
		DescribeTable("rejects bad submissions with the error taxonomy",
			func(username, password string, wantErrors []string) {
				resp := gw.login(username, password, "")
				Expect(resp.StatusCode).To(Equal(http.StatusSeeOther))
				Expect(resp.Cookies()).To(BeEmpty())

				loc, err := url.Parse(resp.Header.Get("Location"))
				Expect(err).NotTo(HaveOccurred())
				Expect(loc.Path).To(Equal("/login"))
				Expect(loc.Query()["error"]).To(Equal(wantErrors))
			},
			Entry("both fields missing", "", "", []string{"username_missing", "password_missing"}),
			Entry("username missing", "", "secret", []string{"username_missing"}),
			Entry("password missing", "alice", "", []string{"password_missing"}),
			Entry("unknown user", "mallory", "secret", []string{"username_not_found"}),
			Entry("wrong password", "alice", "nope", []string{"password_incorrect"}),
			Entry("username is case sensitive", "Alice", "secret", []string{"username_not_found"}),
		)

		It("issues a session cookie and redirects to a local rd", func() {
			resp := gw.login("alice", "secret", "/app/dashboard")
			Expect(resp.StatusCode).To(Equal(http.StatusSeeOther))
			Expect(resp.Header.Get("Location")).To(Equal("/app/dashboard"))

			cookie := gw.sessionCookie(resp)
			Expect(cookie.HttpOnly).To(BeTrue())
			Expect(cookie.Value).To(MatchRegexp(`^[A-Za-z0-9]{64}$`))
		})

		It("ignores off-site redirect targets", func() {
			resp := gw.login("bob", "hunter2", "//evil.example/")
			Expect(resp.StatusCode).To(Equal(http.StatusSeeOther))
			Expect(resp.Header.Get("Location")).To(Equal("/"))
		})
	})

	Describe("Forward-auth", func() {
		It("authorizes an issued session by cookie and by bearer token", func() {
			cookie := gw.sessionCookie(gw.login("alice", "secret", ""))

			Expect(gw.check(cookie, "", "/private")).To(Equal(http.StatusOK))
			Expect(gw.check(nil, cookie.Value, "/private")).To(Equal(http.StatusOK))
		})

		It("rejects missing and forged tokens", func() {
			Expect(gw.check(nil, "", "/private")).To(Equal(http.StatusUnauthorized))
			forged := &http.Cookie{Name: "authgate_session", Value: strings.Repeat("a", 64)}
			Expect(gw.check(forged, "", "/private")).To(Equal(http.StatusUnauthorized))
		})

		It("lets public paths through without a session", func() {
			Expect(gw.check(nil, "", "/static/css/app.css")).To(Equal(http.StatusOK))
			Expect(gw.check(nil, "", "/favicon.ico")).To(Equal(http.StatusOK))
			Expect(gw.check(nil, "", "/static/../admin")).To(Equal(http.StatusUnauthorized))
		})

		It("keeps sessions independent", func() {
			alice := gw.sessionCookie(gw.login("alice", "secret", ""))
			bob := gw.sessionCookie(gw.login("bob", "hunter2", ""))
			Expect(alice.Value).NotTo(Equal(bob.Value))
			Expect(gw.check(alice, "", "")).To(Equal(http.StatusOK))
			Expect(gw.check(bob, "", "")).To(Equal(http.StatusOK))
		})
	})

	Describe("Status page", func() {
		It("redirects anonymous browsers to the login page", func() {
			resp, err := gw.client.Get(gw.base + "/")
			Expect(err).NotTo(HaveOccurred())
			Expect(resp.Body.Close()).To(Succeed())
			Expect(resp.StatusCode).To(Equal(http.StatusSeeOther))
			Expect(resp.Header.Get("Location")).To(Equal("/login"))
		})
	})

	Describe("Observability", func() {
		It("reports health and login metrics", func() {
			status, _ := gw.get(gw.metricsBase, "/healthz/liveness")
			Expect(status).To(Equal(http.StatusOK))
			status, _ = gw.get(gw.metricsBase, "/healthz/readiness")
			Expect(status).To(Equal(http.StatusOK))

			gw.login("alice", "secret", "")
			gw.login("alice", "wrong", "")

			status, body := gw.get(gw.metricsBase, "/metrics")
			Expect(status).To(Equal(http.StatusOK))
			Expect(body).To(ContainSubstring(`authgate_login_attempts_total{outcome="success"} 1`))
			Expect(body).To(ContainSubstring(`authgate_login_attempts_total{outcome="password_incorrect"} 1`))
			Expect(body).To(ContainSubstring("authgate_sessions_active 1"))
		})
	})
})

var _ = Describe("Session capacity", func() {
	It("evicts the least recently issued session", func() {
		gw := startGateway("session:\n  capacity: 2\n")

		first := gw.sessionCookie(gw.login("alice", "secret", ""))
		second := gw.sessionCookie(gw.login("alice", "secret", ""))

		// Checking the oldest session does not protect it from eviction.
		Expect(gw.check(first, "", "")).To(Equal(http.StatusOK))

		third := gw.sessionCookie(gw.login("bob", "hunter2", ""))

		Expect(gw.check(first, "", "")).To(Equal(http.StatusUnauthorized))
		Expect(gw.check(second, "", "")).To(Equal(http.StatusOK))
		Expect(gw.check(third, "", "")).To(Equal(http.StatusOK))

		_, body := gw.get(gw.metricsBase, "/metrics")
		Expect(body).To(ContainSubstring("authgate_sessions_evicted_total 1"))
	})
})
