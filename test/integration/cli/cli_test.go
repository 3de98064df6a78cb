// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Authgate Contributors

//go:build integration

package cli_test

import (
	. "github.com/onsi/ginkgo/v2" //nolint:revive // ginkgo convention
	. "github.com/onsi/gomega"    //nolint:revive // gomega convention
)

var _ = Describe("CLI", func() {
	var env *testEnv

	BeforeEach(func() {
		env = newTestEnv()
	})

	Describe("hash-password and check-config", func() {
		It("produces a credentials entry that check-config accepts", func() {
			entry, err := env.authgate("correct horse\n", "hash-password", "--username", "alice", "--cost", "4")
			Expect(err).NotTo(HaveOccurred(), "hash-password failed: %s", entry)
			Expect(entry).To(HavePrefix("alice: "))
			Expect(entry).To(ContainSubstring("$2a$04$"))

			env.writeCredentials(entry)
			env.writeConfig("listen: 127.0.0.1:0\n")

			output, err := env.authgate("", "check-config")
			Expect(err).NotTo(HaveOccurred(), "check-config failed: %s", output)
			Expect(output).To(ContainSubstring("configuration OK: 1 users"))
		})

		It("hashes with argon2id when configured", func() {
			env.writeConfig("hash:\n  algorithm: argon2id\n")

			output, err := env.authgate("s3cret\n", "hash-password")
			Expect(err).NotTo(HaveOccurred(), "hash-password failed: %s", output)
			Expect(output).To(HavePrefix("$argon2id$v=19$"))
		})
	})

	Describe("check-config failures", func() {
		It("rejects a config that violates the schema", func() {
			env.writeCredentials("")
			env.writeConfig("session:\n  capacity: 0\n")

			output, err := env.authgate("", "check-config")
			Expect(err).To(HaveOccurred())
			Expect(output).To(ContainSubstring("failed to load configuration"))
		})

		It("rejects a malformed stored hash", func() {
			env.writeCredentials("alice: not-a-hash\n")
			env.writeConfig("listen: 127.0.0.1:0\n")

			output, err := env.authgate("", "check-config")
			Expect(err).To(HaveOccurred())
			Expect(output).To(ContainSubstring("invalid credentials file"))
		})

		It("reports a missing credentials file", func() {
			env.writeConfig("listen: 127.0.0.1:0\n")

			output, err := env.authgate("", "check-config")
			Expect(err).To(HaveOccurred())
			Expect(output).To(ContainSubstring("failed to load credentials"))
		})
	})
})
