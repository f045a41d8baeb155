/*
 * log.go, part of gochemcore.
 *
 *
 * Copyright 2026 The gochemcore Authors
 *
 * This program is free software; you can redistribute it and/or modify
 * it under the terms of the GNU Lesser General Public License as
 * published by the Free Software Foundation; either version 2.1 of the
 * License, or (at your option) any later version.
 *
 * This program is distributed in the hope that it will be useful,
 * but WITHOUT ANY WARRANTY; without even the implied warranty of
 * MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
 * GNU General Public License for more details.
 *
 * You should have received a copy of the GNU Lesser General
 * Public License along with this program.  If not, see
 * <http://www.gnu.org/licenses/>.
 *
 *
 */

package chem

import "go.uber.org/zap"

var clog = newDefaultLogger()

func newDefaultLogger() *zap.Logger {
	l, err := zap.NewProduction()
	if err != nil {
		return zap.NewNop()
	}
	return l.Named("gochemcore")
}

//SetLogger replaces the package logger. A nil logger discards everything.
//It is not safe to call it while molecules are being used from other goroutines.
func SetLogger(l *zap.Logger) {
	if l == nil {
		l = zap.NewNop()
	}
	clog = l
}

//Logger returns the package logger, so adapters and integrators can log the same way.
func Logger() *zap.Logger { return clog }
