// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 UNxchange Contributors

package main

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/UNxchange/back-pappi-calculator-auth/pkg/errutil"
)

func TestServeCommand_CreatesConfigDir(t *testing.T) {
	configFile = ""
	tmp := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", tmp)
	t.Setenv("DATABASE_URL", "")
	t.Setenv("AUTH_SECRET_KEY", "")

	cmd := NewRootCmd()
	buf := new(bytes.Buffer)
	cmd.SetOut(buf)
	cmd.SetErr(buf)
	cmd.SetArgs([]string{"serve"})

	// No database URL configured, so the command fails at validation,
	// but the config dir must exist afterwards.
	err := cmd.Execute()
	require.Error(t, err)
	errutil.AssertErrorCode(t, err, "CONFIG_INVALID")

	info, statErr := os.Stat(filepath.Join(tmp, "authd"))
	require.NoError(t, statErr)
	assert.True(t, info.IsDir())
	assert.Equal(t, os.FileMode(0o700), info.Mode().Perm())
}

func TestServeCommand_ExplicitConfigSkipsDirCreation(t *testing.T) {
	configFile = ""
	tmp := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", tmp)
	t.Setenv("DATABASE_URL", "")
	t.Setenv("AUTH_SECRET_KEY", "")

	cmd := NewRootCmd()
	buf := new(bytes.Buffer)
	cmd.SetOut(buf)
	cmd.SetErr(buf)
	cmd.SetArgs([]string{"serve", "--config", filepath.Join(tmp, "nope.yaml")})

	err := cmd.Execute()
	require.Error(t, err)
	errutil.AssertErrorCode(t, err, "CONFIG_LOAD_FAILED")

	_, statErr := os.Stat(filepath.Join(tmp, "authd"))
	assert.True(t, os.IsNotExist(statErr))
}
