package service

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	uploadsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "keepsake_uploads_total",
		Help: "Accepted image uploads",
	})

	uploadRejectionsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "keepsake_upload_rejections_total",
		Help: "Rejected image uploads",
	}, []string{"reason"}) // reason: unauthorized, invalid_type, too_large, empty, storage

	deletesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "keepsake_deletes_total",
		Help: "Image deletion outcomes",
	}, []string{"result"}) // result: deleted, absent, failed
)
