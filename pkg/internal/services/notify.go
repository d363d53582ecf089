package services

import (
	"fmt"

	webpush "github.com/SherClockHolmes/webpush-go"
	"github.com/nexocrm/messaging/pkg/internal/database"
	"github.com/nexocrm/messaging/pkg/internal/hub"
	"github.com/nexocrm/messaging/pkg/internal/models"
	jsoniter "github.com/json-iterator/go"
	"github.com/rs/zerolog/log"
	"github.com/spf13/viper"
)

func pushEnabled() bool {
	return len(viper.GetString("push.vapid_public_key")) > 0 &&
		len(viper.GetString("push.vapid_private_key")) > 0
}

// AddPushSubscription registers a device endpoint for an account. Re-posting
// the same endpoint rebinds it.
func AddPushSubscription(user models.Account, endpoint, p256dh, auth string) error {
	var subscription models.PushSubscription
	if err := database.C.Where("endpoint = ?", endpoint).First(&subscription).Error; err == nil {
		subscription.AccountID = user.ID
		subscription.P256dh = p256dh
		subscription.Auth = auth
		return database.C.Save(&subscription).Error
	}

	subscription = models.PushSubscription{
		AccountID: user.ID,
		Endpoint:  endpoint,
		P256dh:    p256dh,
		Auth:      auth,
	}
	return database.C.Save(&subscription).Error
}

// NotifyMessageOffline fires a web push at members who will not receive the
// realtime packet: not connected to the gateway and not viewing the channel.
// Fire and forget, failures are only logged.
func NotifyMessageOffline(channel models.Channel, message models.Message, members []models.ChannelMember) {
	if !pushEnabled() {
		return
	}

	var title string
	if message.Sender != nil {
		title = fmt.Sprintf("%s in %s", message.Sender.DisplayName(), channel.DisplayText())
	} else {
		title = channel.DisplayText()
	}

	payload, _ := jsoniter.Marshal(map[string]any{
		"title":      title,
		"body":       message.Content,
		"channel_id": channel.ID,
	})

	for _, member := range members {
		if message.SenderID != nil && member.AccountID == *message.SenderID {
			continue
		}
		if hub.CheckOnline(member.AccountID) || hub.CheckSubscribed(member.AccountID, channel.ID) {
			continue
		}

		var subscriptions []models.PushSubscription
		if err := database.C.Where("account_id = ?", member.AccountID).Find(&subscriptions).Error; err != nil {
			continue
		}

		for _, subscription := range subscriptions {
			resp, err := webpush.SendNotification(payload, &webpush.Subscription{
				Endpoint: subscription.Endpoint,
				Keys: webpush.Keys{
					P256dh: subscription.P256dh,
					Auth:   subscription.Auth,
				},
			}, &webpush.Options{
				Subscriber:      viper.GetString("push.subscriber"),
				VAPIDPublicKey:  viper.GetString("push.vapid_public_key"),
				VAPIDPrivateKey: viper.GetString("push.vapid_private_key"),
				TTL:             60,
			})
			if err != nil {
				log.Warn().Err(err).Msg("An error occurred when trying notify user.")
				continue
			}
			_ = resp.Body.Close()
		}
	}
}
