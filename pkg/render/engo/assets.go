// pkg/render/engo/assets.go
package engo

import (
	"image"
	"image/color"
	"image/draw"

	"github.com/EngoEngine/engo/common"
)

// Sprite edge lengths in pixels
const (
	BodySpriteSize    = 32
	ReticleSpriteSize = 9
)

var (
	bodyColor    = color.RGBA{255, 255, 255, 255}
	noseColor    = color.RGBA{255, 64, 64, 255}
	reticleColor = color.RGBA{255, 255, 0, 255}
)

// AssetManager builds the sprites procedurally; there are no asset files.
type AssetManager struct {
	body    common.Drawable
	reticle common.Drawable
}

// NewAssetManager creates a new asset manager
func NewAssetManager() *AssetManager {
	return &AssetManager{}
}

// LoadAssets uploads the generated images as textures. It needs a live
// GL context, so it only runs from a scene's Setup.
func (am *AssetManager) LoadAssets() error {
	am.body = convertToEngoTexture(BodyImage(BodySpriteSize))
	am.reticle = convertToEngoTexture(ReticleImage(ReticleSpriteSize))
	return nil
}

// BodyImage draws the body: a filled square with a nose marker on its top
// edge, so that rotating the sprite by the facing angle shows "forward".
func BodyImage(size int) *image.NRGBA {
	img := createBaseImage(size, size)
	border := max(size/8, 1)

	draw.Draw(img, image.Rect(border, border, size-border, size-border),
		image.NewUniform(bodyColor), image.Point{}, draw.Src)

	nose := max(size/4, 1)
	mid := size / 2
	for y := 0; y < nose; y++ {
		for x := mid - y - 1; x <= mid+y; x++ {
			if x >= 0 && x < size {
				img.Set(x, y+border, noseColor)
			}
		}
	}
	return img
}

// ReticleImage draws a plus-shaped aim marker
func ReticleImage(size int) *image.NRGBA {
	img := createBaseImage(size, size)
	mid := size / 2
	for i := 0; i < size; i++ {
		img.Set(i, mid, reticleColor)
		img.Set(mid, i, reticleColor)
	}
	return img
}

// createBaseImage creates a transparent image with the specified dimensions.
func createBaseImage(width, height int) *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, width, height))
	draw.Draw(img, img.Bounds(), image.Transparent, image.Point{}, draw.Src)
	return img
}

// convertToEngoTexture converts an image to an Engo-compatible texture.
func convertToEngoTexture(img *image.NRGBA) common.Drawable {
	texture := common.NewImageObject(img)
	return common.NewTextureSingle(texture)
}

// BodySprite returns the body texture, or nil before LoadAssets
func (am *AssetManager) BodySprite() common.Drawable {
	return am.body
}

// ReticleSprite returns the aim marker texture, or nil before LoadAssets
func (am *AssetManager) ReticleSprite() common.Drawable {
	return am.reticle
}
