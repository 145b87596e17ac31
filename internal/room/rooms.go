package room

import "strconv"

// KitchenRoom is the single global room the kitchen display subscribes to.
const KitchenRoom = "kitchen"

// DeskRoom returns the room name for a desk's observers.
func DeskRoom(deskID int64) string {
	return "desk:" + strconv.FormatInt(deskID, 10)
}
