/*
 * metrics.go, part of gochemcore.
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

import "github.com/prometheus/client_golang/prometheus"

var (
	calcRequests = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "gochemcore",
		Name:      "calculation_requests_total",
		Help:      "Calculation requests made to molecules with a bound energy model.",
	})
	cacheHits = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "gochemcore",
		Name:      "cache_hits_total",
		Help:      "Calculation requests answered entirely from the property cache.",
	})
	storeHits = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "gochemcore",
		Name:      "store_hits_total",
		Help:      "Property snapshots loaded from a persistent store.",
	})
	topologyRebuilds = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "gochemcore",
		Name:      "topology_rebuilds_total",
		Help:      "Topology builds, at construction and when atoms are added.",
	})
	calcSeconds = prometheus.NewHistogram(prometheus.HistogramOpts{
		Namespace: "gochemcore",
		Name:      "calculation_seconds",
		Help:      "Wall time of blocking calculations.",
		Buckets:   prometheus.ExponentialBuckets(0.001, 4, 10),
	})
)

//RegisterMetrics registers the package's collectors with reg.
func RegisterMetrics(reg prometheus.Registerer) error {
	for _, c := range []prometheus.Collector{calcRequests, cacheHits, storeHits, topologyRebuilds, calcSeconds} {
		if err := reg.Register(c); err != nil {
			return err
		}
	}
	return nil
}
