/*
 * badger.go, part of gochemcore.
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


package propstore

import (
	"context"
	"errors"

	"github.com/dgraph-io/badger/v4"
	chem "github.com/rmera/gochemcore"
	"go.uber.org/zap"
)

//Badger is a property store on a Badger key-value database. It is safe for concurrent use.
type Badger struct {
	db        *badger.DB
	namespace string
}

//badgerLogger sends Badger's messages to a zap logger.
type badgerLogger struct {
	*zap.SugaredLogger
}

func (l badgerLogger) Warningf(format string, args ...interface{}) {
	l.Warnf(format, args...)
}

//OpenBadger opens (creating it if needed) a Badger database in dir. If dir is empty,
//the database is kept in memory only.
func OpenBadger(dir, namespace string) (*Badger, error) {
	opts := badger.DefaultOptions(dir)
	if dir == "" {
		opts = opts.WithInMemory(true)
	}
	opts = opts.WithLogger(badgerLogger{chem.Logger().Named("badger").Sugar()})
	db, err := badger.Open(opts)
	if err != nil {
		return nil, Error{"open badger: " + err.Error(), []string{"OpenBadger"}, true}
	}
	return &Badger{db: db, namespace: namespace}, nil
}

//Load returns the snapshot stored for sys, or nil, nil if there is none.
func (b *Badger) Load(ctx context.Context, sys *chem.System) (*chem.Properties, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	var payload []byte
	err := b.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(Key(b.namespace, sys)))
		if err != nil {
			return err
		}
		payload, err = item.ValueCopy(nil)
		return err
	})
	if errors.Is(err, badger.ErrKeyNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, Error{"get snapshot: " + err.Error(), []string{"Badger.Load"}, true}
	}
	return checked(payload, sys, "Badger.Load")
}

//Save stores p for sys, replacing whatever was stored for the same system.
func (b *Badger) Save(ctx context.Context, sys *chem.System, p *chem.Properties) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	data, err := Encode(sys, p)
	if err != nil {
		return errDecorate(err, "Badger.Save")
	}
	err = b.db.Update(func(txn *badger.Txn) error {
		return txn.Set([]byte(Key(b.namespace, sys)), data)
	})
	if err != nil {
		return Error{"set snapshot: " + err.Error(), []string{"Badger.Save"}, true}
	}
	return nil
}

//Close closes the database.
func (b *Badger) Close() error { return b.db.Close() }
