package hub

import "sync"

// ChannelID -> UserID -> Client ID
var subscribeInfo = make(map[string]map[string]string)
var subscribeLock sync.Mutex

// A subscribed user is actively viewing the channel: incoming messages are
// marked read for them right away and push notifications are skipped.

func CheckSubscribed(userId string, channelId string) bool {
	subscribeLock.Lock()
	defer subscribeLock.Unlock()
	if _, ok := subscribeInfo[channelId]; ok {
		if _, ok := subscribeInfo[channelId][userId]; ok {
			return true
		}
	}
	return false
}

func SubscribeChannel(userId string, channelId string, clientId string) {
	subscribeLock.Lock()
	defer subscribeLock.Unlock()
	if _, ok := subscribeInfo[channelId]; !ok {
		subscribeInfo[channelId] = make(map[string]string)
	}
	subscribeInfo[channelId][userId] = clientId
}

func UnsubscribeChannel(userId string, channelId string) {
	subscribeLock.Lock()
	defer subscribeLock.Unlock()
	if _, ok := subscribeInfo[channelId]; ok {
		delete(subscribeInfo[channelId], userId)
	}
}

func UnsubscribeAllWithClient(clientId string) {
	subscribeLock.Lock()
	defer subscribeLock.Unlock()
	for _, v := range subscribeInfo {
		for k, item := range v {
			if item == clientId {
				delete(v, k)
			}
		}
	}
}
