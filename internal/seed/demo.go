package seed

import (
	"fmt"
	"time"

	"github.com/railzwaylabs/subtelemetry/internal/storage"
	"github.com/railzwaylabs/subtelemetry/internal/timewindow"
)

// Demo builds a small store with a few months of history ending at now.
func Demo(now time.Time) Dataset {
	month := timewindow.StartOfMonth(now)
	at := func(monthsAgo, day int) time.Time {
		return month.AddDate(0, -monthsAgo, day-1).Add(10 * time.Hour)
	}

	ds := Dataset{
		Options: map[string]string{
			"woocommerce_subscriptions_gifting_enabled":        "yes",
			"woocommerce_subscriptions_gifting_default_option": "enabled_for_all",
		},
		Products: []Product{
			{Ref: "coffee-monthly", Type: storage.TermSubscription, Period: "month", Interval: "1"},
			{Ref: "coffee-yearly", Type: storage.TermSubscription, Period: "year", Interval: "1", Gifting: "disabled"},
			{Ref: "box", Type: storage.TermVariableSubscription},
			{Ref: "box-weekly", ParentRef: "box", Period: "week", Interval: "2"},
			{Ref: "box-monthly", ParentRef: "box", Period: "month", Interval: "1"},
			{Ref: "mug", Type: "simple"},
		},
	}

	gateways := []string{"stripe", "paypal", ""}
	for i := 0; i < 9; i++ {
		ref := fmt.Sprintf("initial-%d", i)
		customer := int64(100 + i)
		gateway := gateways[i%len(gateways)]
		ds.Orders = append(ds.Orders, Order{
			Ref:           ref,
			Created:       at(5-i%6, 3+i),
			Total:         "19.90",
			PaymentMethod: gateway,
			CustomerID:    customer,
			Quantity:      1 + i%2,
		})

		status := storage.StatusActive
		switch i % 4 {
		case 1:
			status = storage.StatusCancelled
		case 2:
			status = storage.StatusOnHold
		}
		manual := "false"
		if gateway == "" {
			manual = "true"
		}
		ds.Subscriptions = append(ds.Subscriptions, Subscription{
			Ref:             fmt.Sprintf("sub-%d", i),
			ParentRef:       ref,
			Status:          status,
			Created:         at(5-i%6, 3+i),
			CustomerID:      customer,
			PaymentMethod:   gateway,
			BillingPeriod:   "month",
			BillingInterval: "1",
			ManualRenewal:   manual,
		})

		for m := 4 - i%6; m >= 0; m-- {
			ds.Orders = append(ds.Orders, Order{
				Created:       at(m, 3+i),
				Total:         "19.90",
				PaymentMethod: gateway,
				CustomerID:    customer,
				Kind:          "renewal",
			})
		}
	}

	ds.Orders = append(ds.Orders,
		Order{Created: at(1, 12), Total: "5.00", PaymentMethod: "stripe", CustomerID: 101, Kind: "switch"},
		Order{Created: at(0, 2), Total: "0.00", PaymentMethod: "paypal", CustomerID: 102, Kind: "resubscribe"},
		Order{Created: at(2, 20), Total: "42.00", PaymentMethod: "bacs", CustomerID: 500, Status: storage.StatusProcessing},
		Order{Created: at(0, 1), Total: "12.50", PaymentMethod: "cod", CustomerID: 501},
	)
	return ds
}
